package board

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

// Device runs a Board on a stream: bytes are fed to a Parser one at a
// time and the Board reports inputs every sampling interval.
//
// The Parser and the Board are only touched by the goroutine in Run.
type Device struct {
	ReadWriter io.ReadWriter
	Board      *Board
	// Dispatcher receives decoded commands, defaults to Board.
	// It's used to wrap the Board, e.g. for tracing.
	Dispatcher firmata.Dispatcher
	// Announce sends version and firmware when started.
	Announce bool

	parser firmata.Parser
}

// NewDevice creates a Device with a Board replying on the same stream.
func NewDevice(rw io.ReadWriter, t *Table, hw Hardware) *Device {
	return &Device{
		ReadWriter: rw,
		Board:      New(t, hw, rw),
		Announce:   true,
	}
}

// Name implements Named.
func (d *Device) Name() string {
	return "device"
}

// Run implements Runnable.
func (d *Device) Run(ctx context.Context) error {
	d.parser.Dispatcher = d.Dispatcher
	if d.parser.Dispatcher == nil {
		d.parser.Dispatcher = d.Board
	}
	if d.Announce {
		if err := d.Board.Announce(); err != nil {
			return err
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.readLoop(subCtx, byteCh, errCh)

	interval := d.Board.SamplingInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case b := <-byteCh:
			glog.V(3).Infof("RCV %02x", b)
			if err := d.parser.Feed(b); err != nil {
				glog.Warningf("malformed input: %v", err)
			}
			if i := d.Board.SamplingInterval(); i != interval {
				interval = i
				ticker.Reset(interval)
			}
		case <-ticker.C:
			if err := d.Board.Report(); err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Device) readLoop(ctx context.Context, byteCh chan<- byte, errCh chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := d.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}
