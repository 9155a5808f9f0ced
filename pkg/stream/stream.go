// Package stream opens the byte streams a Firmata board talks over.
package stream

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
)

// Role is the side of the link.
type Role int

const (
	// RoleBoard is the firmware side.
	RoleBoard Role = iota
	// RoleHost is the host computer side.
	RoleHost
)

// Options for opening streams.
type Options struct {
	Role Role
	// ID identifies the board on shared transports (MQTT).
	ID string
}

// Open opens a stream from URL. Supported schemes:
//
//   serial:///dev/ttyUSB0?baud=57600
//   serial://auto?vid=0403&pid=6015
//   ws://host:port/path   dial a websocket
//   wsl://:port/path      accept one websocket connection
//   mqtt://host:port/prefix/
func Open(ctx context.Context, rawURL string, opts Options) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream URL: %w", err)
	}
	switch u.Scheme {
	case "serial":
		port, err := OpenSerial(u)
		if err != nil {
			return nil, err
		}
		return port, nil
	case "ws", "wss":
		conn, err := DialWebsocket(u)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "wsl":
		return AcceptWebsocket(ctx, u)
	case "mqtt", "tcp", "ssl":
		return openMQTT(ctx, rawURL, opts)
	default:
		return nil, fmt.Errorf("unknown stream URL scheme: %q", u.Scheme)
	}
}

func openMQTT(ctx context.Context, rawURL string, opts Options) (io.ReadWriteCloser, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("board ID is required for MQTT streams")
	}
	q, err := mqtt.NewQueueFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	s := mqtt.NewStream(q)
	if opts.Role == RoleBoard {
		s.ForBoard(opts.ID)
	} else {
		s.ForHost(opts.ID)
	}
	if err := s.Open(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
