package stream

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

var errListenerClosed = errors.New("websocket listener closed")

// DialWebsocket connects to a websocket server, using binary frames.
func DialWebsocket(u *url.URL) (*websocket.Conn, error) {
	origin := url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conn, err := websocket.Dial(u.String(), "", origin.String())
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// acceptedConn closes the server along with the connection.
type acceptedConn struct {
	*websocket.Conn
	server *http.Server
	done   chan struct{}
	once   sync.Once
}

func (c *acceptedConn) Close() error {
	var err error
	c.once.Do(func() {
		err = c.Conn.Close()
		close(c.done)
		c.server.Close()
	})
	return err
}

// AcceptWebsocket listens on wsl://host:port/path and returns the first
// websocket connection. The listener is closed with the connection.
func AcceptWebsocket(ctx context.Context, u *url.URL) (io.ReadWriteCloser, error) {
	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, err
	}
	glog.Infof("waiting for websocket connection on %s%s", ln.Addr(), u.Path)
	conn, err := acceptWebsocket(ctx, u.Path, ln)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func acceptWebsocket(ctx context.Context, path string, ln net.Listener) (*acceptedConn, error) {
	if path == "" {
		path = "/"
	}
	var accepted int32
	connCh := make(chan *acceptedConn, 1)
	server := &http.Server{}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(ws *websocket.Conn) {
		if !atomic.CompareAndSwapInt32(&accepted, 0, 1) {
			return
		}
		ws.PayloadType = websocket.BinaryFrame
		conn := &acceptedConn{Conn: ws, server: server, done: make(chan struct{})}
		connCh <- conn
		glog.Infof("websocket connected from %s", ws.Request().RemoteAddr)
		<-conn.done
	}))
	server.Handler = mux
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	select {
	case conn := <-connCh:
		return conn, nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			err = errListenerClosed
		}
		return nil, err
	case <-ctx.Done():
		server.Close()
		return nil, ctx.Err()
	}
}
