// Package env provides the common configuration of the firmata commands.
package env

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/robotalks/firmata.go/pkg/stream"
	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
	"github.com/robotalks/firmata.go/pkg/trace"
)

// Config provides common options for boards and hosts.
type Config struct {
	// StreamURL specifies the link to the board, see stream.Open.
	StreamURL string

	// MQTTURL specifies the MQTT broker for traces and discovery.
	// e.g. mqtt://host:port/topic-prefix
	MQTTURL string

	// BoardID identifies the board on MQTT.
	BoardID string

	// Trace publishes decoded commands to MQTT.
	Trace bool
}

var defaultConfig = Config{
	StreamURL: "serial://auto",
	MQTTURL:   "mqtt://localhost:1883/firmata/",
}

var loadBoardID = MachineID

func init() {
	defaultConfig.load(os.Getenv)
}

func (c *Config) load(getenv func(string) string) {
	if val := getenv("FIRMATA_STREAM_URL"); val != "" {
		c.StreamURL = val
	}
	if val := getenv("FIRMATA_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	if val := getenv("FIRMATA_BOARD_ID"); val != "" {
		c.BoardID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.StreamURL, "stream", defaultConfig.StreamURL, "Stream URL (serial, ws, wsl, mqtt).")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.BoardID, "id", defaultConfig.BoardID, "Board ID, defaults to machine ID.")
	flag.BoolVar(&defaultConfig.Trace, "trace", defaultConfig.Trace, "Publish decoded commands to MQTT.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ID returns BoardID, or the machine ID if not specified.
func (c *Config) ID() string {
	if c.BoardID == "" {
		c.BoardID = loadBoardID()
	}
	return c.BoardID
}

// OpenStream opens StreamURL.
func (c *Config) OpenStream(ctx context.Context, role stream.Role) (io.ReadWriteCloser, error) {
	return stream.Open(ctx, c.StreamURL, stream.Options{Role: role, ID: c.ID()})
}

// NewQueue creates an MQTT queue on MQTTURL.
func (c *Config) NewQueue() (*mqtt.Queue, error) {
	if c.MQTTURL == "" {
		return nil, fmt.Errorf("MQTT broker URL must be specified")
	}
	return mqtt.NewQueueFromURL(c.MQTTURL)
}

// NewBoardQueue creates an MQTT queue announcing the board.
func (c *Config) NewBoardQueue(meta mqtt.BoardMeta) (*mqtt.Queue, error) {
	if c.MQTTURL == "" {
		return nil, fmt.Errorf("MQTT broker URL must be specified")
	}
	return mqtt.NewBoardQueue(c.MQTTURL, c.ID(), meta)
}

// TraceWriter publishes trace packets of the board to ID/trace.
func (c *Config) TraceWriter(q *mqtt.Queue) trace.PacketWriter {
	return &mqtt.Publisher{Queue: q, Topic: c.ID() + "/trace"}
}
