package sh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/board"
	"github.com/robotalks/firmata.go/pkg/firmata"
	"github.com/robotalks/firmata.go/pkg/trace"
)

// Reply kinds.
const (
	KindAnalog     = "analog"
	KindDigital    = "digital"
	KindVersion    = "version"
	KindFirmware   = "firmware"
	KindString     = "string"
	KindCapability = "capability"
	KindMapping    = "mapping"
	KindPinState   = "pinstate"
	KindSysex      = "sysex"
)

// DefaultTimeout is the default time to wait for a reply.
const DefaultTimeout = time.Second

// maxReplySize fits the capability response of boards with many pins.
const maxReplySize = 4096

// ErrTimeout indicates no reply was received in time.
var ErrTimeout = errors.New("reply timeout")

// Reply is a message decoded from the board.
type Reply struct {
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

// AnalogValue is the value of an ANALOG_MESSAGE.
type AnalogValue struct {
	Channel byte   `json:"channel"`
	Value   uint16 `json:"value"`
}

// DigitalValue is the value of a DIGITAL_MESSAGE.
type DigitalValue struct {
	Port  byte   `json:"port"`
	Value uint16 `json:"value"`
}

// Firmware is the value of a REPORT_FIRMWARE reply.
type Firmware struct {
	Major byte   `json:"major"`
	Minor byte   `json:"minor"`
	Name  string `json:"name"`
}

// Sysex is an unrecognized Sysex message.
type Sysex struct {
	Command firmata.SysexCommand `json:"command"`
	Data    []byte               `json:"data"`
}

func (r Reply) String() string {
	switch v := r.Value.(type) {
	case AnalogValue:
		return fmt.Sprintf("A%d = %d", v.Channel, v.Value)
	case DigitalValue:
		return fmt.Sprintf("port %d = %08b", v.Port, v.Value)
	case Firmware:
		return fmt.Sprintf("%s %d.%d", v.Name, v.Major, v.Minor)
	case board.PinState:
		return fmt.Sprintf("pin %d %s %d", v.Pin, v.Mode, v.State)
	case *board.Table:
		return v.String()
	case Sysex:
		return fmt.Sprintf("sysex %s % X", v.Command, v.Data)
	}
	return fmt.Sprintf("%s %v", r.Kind, r.Value)
}

// Host talks to a board over a stream. Replies are matched to the oldest
// pending Request of the same kind, others are passed to OnReport.
type Host struct {
	firmata.NopDispatcher

	Stream  io.ReadWriteCloser
	Encoder *firmata.Encoder
	Timeout time.Duration
	// OnReport receives replies no Request waits for.
	OnReport func(Reply)
	// Trace receives trace packets of decoded replies if not nil.
	Trace trace.PacketWriter

	lock    sync.Mutex
	waiters map[string][]chan Reply
	parser  firmata.Parser
}

// NewHost creates a Host on the stream.
func NewHost(rw io.ReadWriteCloser) *Host {
	return &Host{
		Stream:  rw,
		Encoder: firmata.NewEncoder(rw),
		Timeout: DefaultTimeout,
		waiters: make(map[string][]chan Reply),
	}
}

// Run reads from the stream until it fails or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	h.parser = firmata.Parser{Dispatcher: h, ExpectVersionReply: true, MaxSysexSize: maxReplySize}
	if h.Trace != nil {
		h.parser.Dispatcher = trace.New(h, h.Trace, "host")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.readLoop()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.Stream.Close()
		return ctx.Err()
	}
}

func (h *Host) readLoop() error {
	buf := make([]byte, 256)
	for {
		n, err := h.Stream.Read(buf)
		if n > 0 {
			glog.V(3).Infof("recv % X", buf[:n])
			if _, perr := h.parser.Write(buf[:n]); perr != nil {
				glog.Warningf("malformed reply: %v", perr)
			}
		}
		if err != nil {
			return err
		}
	}
}

// Request sends a message and waits for the reply of kind.
func (h *Host) Request(ctx context.Context, kind string, send func(*firmata.Encoder) error) (Reply, error) {
	ch := make(chan Reply, 1)
	h.lock.Lock()
	h.waiters[kind] = append(h.waiters[kind], ch)
	h.lock.Unlock()

	if err := send(h.Encoder); err != nil {
		h.cancel(kind, ch)
		return Reply{}, err
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	select {
	case r := <-ch:
		return r, nil
	case <-time.After(timeout):
		h.cancel(kind, ch)
		return Reply{}, fmt.Errorf("%s: %w", kind, ErrTimeout)
	case <-ctx.Done():
		h.cancel(kind, ch)
		return Reply{}, ctx.Err()
	}
}

func (h *Host) cancel(kind string, ch chan Reply) {
	h.lock.Lock()
	defer h.lock.Unlock()
	chs := h.waiters[kind]
	for n, c := range chs {
		if c == ch {
			h.waiters[kind] = append(chs[:n], chs[n+1:]...)
			return
		}
	}
}

func (h *Host) deliver(kind string, value interface{}) {
	r := Reply{Kind: kind, Value: value}
	h.lock.Lock()
	var ch chan Reply
	if chs := h.waiters[kind]; len(chs) > 0 {
		ch, h.waiters[kind] = chs[0], chs[1:]
	}
	h.lock.Unlock()
	if ch != nil {
		ch <- r
		return
	}
	if h.OnReport != nil {
		h.OnReport(r)
	}
}

// OnAnalogValue implements Dispatcher.
func (h *Host) OnAnalogValue(channel byte, value uint16) {
	h.deliver(KindAnalog, AnalogValue{Channel: channel, Value: value})
}

// OnDigitalValue implements Dispatcher.
func (h *Host) OnDigitalValue(port byte, value uint16) {
	h.deliver(KindDigital, DigitalValue{Port: port, Value: value})
}

// OnVersionReport implements VersionReportHandler.
func (h *Host) OnVersionReport(major, minor byte) {
	h.deliver(KindVersion, fmt.Sprintf("%d.%d", major, minor))
}

// OnFirmwareReport implements Dispatcher.
func (h *Host) OnFirmwareReport(major, minor byte, name string) {
	h.deliver(KindFirmware, Firmware{Major: major, Minor: minor, Name: name})
}

// OnStringMessage implements Dispatcher.
func (h *Host) OnStringMessage(text string) {
	h.deliver(KindString, text)
}

// OnSysexCommand implements Dispatcher.
func (h *Host) OnSysexCommand(cmd firmata.SysexCommand, data []byte) {
	switch cmd {
	case firmata.CapabilityResponse:
		t, err := board.ParseCapabilityResponse(data)
		if err != nil {
			glog.Warningf("capability response: %v", err)
			return
		}
		h.deliver(KindCapability, t)
		return
	case firmata.AnalogMappingResponse:
		h.deliver(KindMapping, append([]byte(nil), data...))
		return
	case firmata.PinStateResponse:
		state, err := board.ParsePinStateResponse(data)
		if err != nil {
			glog.Warningf("pin state response: %v", err)
			return
		}
		h.deliver(KindPinState, state)
		return
	}
	h.deliver(KindSysex, Sysex{Command: cmd, Data: append([]byte(nil), data...)})
}
