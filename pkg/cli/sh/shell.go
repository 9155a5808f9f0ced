package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/env"
	"github.com/robotalks/firmata.go/pkg/firmata"
	"github.com/robotalks/firmata.go/pkg/stream"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is a connected board.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	URL    string
	Host   *Host
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Send sends a message without waiting for reply.
func Send(c *ishell.Context, send func(*firmata.Encoder) error) error {
	s := ShellFrom(c)
	if err := send(s.Conn.Host.Encoder); err != nil {
		c.Err(err)
		return err
	}
	if !s.OutputJSON {
		c.Println("OK")
	}
	return nil
}

// Request sends a message and prints the reply of kind.
func Request(c *ishell.Context, kind string, send func(*firmata.Encoder) error) (Reply, error) {
	s := ShellFrom(c)
	r, err := s.Conn.Host.Request(s.Conn.Ctx, kind, send)
	if err != nil {
		c.Err(err)
		return r, err
	}
	s.PrintReply(c, r)
	return r, nil
}

type printer interface {
	Println(val ...interface{})
}

// PrintReply prints the reply in text or JSON.
func (s *Shell) PrintReply(p printer, r Reply) {
	if s.OutputJSON {
		out, err := json.Marshal(r)
		if err != nil {
			glog.Errorf("encode reply: %v", err)
			return
		}
		p.Println(string(out))
		return
	}
	p.Println(r.String())
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the stream and starts receiving from the board.
func (s *Shell) Connect(streamURL string) error {
	conn := &Conn{URL: streamURL}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	rw, err := stream.Open(conn.Ctx, streamURL, stream.Options{Role: stream.RoleHost, ID: s.Config.ID()})
	if err != nil {
		conn.Cancel()
		return err
	}
	conn.Host = NewHost(rw)
	conn.Host.OnReport = func(r Reply) {
		s.PrintReply(s.Shell, r)
	}
	if s.Config.Trace {
		q, err := s.Config.NewQueue()
		if err == nil {
			err = q.Connect(conn.Ctx)
		}
		if err != nil {
			conn.Cancel()
			rw.Close()
			return fmt.Errorf("trace: %w", err)
		}
		conn.Host.Trace = s.Config.TraceWriter(q)
		go func() {
			<-conn.Ctx.Done()
			q.Close()
		}()
	}
	s.Disconnect()
	s.Conn = conn
	go func() {
		err := conn.Host.Run(conn.Ctx)
		if conn.Ctx.Err() == nil {
			glog.Errorf("connection %s lost: %v", streamURL, err)
			s.Shell.Printf("disconnected: %v\n", err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", streamURL))
	return nil
}

// Disconnect disconnects current board.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.StreamURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.StreamURL)
		}
		if err := s.Connect(s.Config.StreamURL); err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.StreamURL, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		s.Disconnect()
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Disconnect()
		return
	}
	glog.Exit("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
