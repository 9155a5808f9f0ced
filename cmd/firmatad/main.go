package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/board"
	"github.com/robotalks/firmata.go/pkg/env"
	"github.com/robotalks/firmata.go/pkg/firmata"
	fx "github.com/robotalks/firmata.go/pkg/framework"
	"github.com/robotalks/firmata.go/pkg/stream"
	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
	"github.com/robotalks/firmata.go/pkg/trace"
)

var (
	adcBits      = uint(board.DefaultADCBits)
	firmwareName = board.DefaultFirmwareName
)

func init() {
	env.SetupFlags()
	flag.UintVar(&adcBits, "adc-bits", adcBits, "ADC resolution of the simulated board.")
	flag.StringVar(&firmwareName, "firmware", firmwareName, "Firmware name to report.")
}

type daemon struct {
	conf  *env.Config
	table *board.Table
	hw    *board.SimHardware
	queue *mqtt.Queue
	trace trace.PacketWriter
}

func (d *daemon) Name() string {
	return "firmatad"
}

func (d *daemon) Run(ctx context.Context) error {
	if d.queue != nil {
		if err := d.queue.Connect(ctx); err != nil {
			return fmt.Errorf("connect MQTT: %w", err)
		}
		defer d.queue.Close()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := mqtt.Unregister(ctx, d.queue, d.conf.ID()); err != nil {
				glog.Warningf("unregister: %v", err)
			}
		}()
	}
	for {
		err := d.serve(ctx)
		if ctx.Err() != nil || !d.reaccept() {
			return err
		}
		glog.Warningf("connection closed: %v, waiting for next", err)
	}
}

// reaccept indicates the stream listens for connections, so a new one is
// accepted when the current one closes.
func (d *daemon) reaccept() bool {
	u, err := url.Parse(d.conf.StreamURL)
	return err == nil && u.Scheme == "wsl"
}

func (d *daemon) serve(ctx context.Context) error {
	rw, err := d.conf.OpenStream(ctx, stream.RoleBoard)
	if err != nil {
		return err
	}
	dev := board.NewDevice(rw, d.table, d.hw)
	dev.Board.ADCBits = adcBits
	dev.Board.FirmwareName = firmwareName
	if d.trace != nil {
		dev.Dispatcher = trace.New(dev.Board, d.trace, "board")
	}
	glog.Infof("board %s running on %s", d.conf.ID(), d.conf.StreamURL)
	return fx.RunWithContextCloser(ctx, rw, func() error {
		return dev.Run(ctx)
	})
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	d := &daemon{conf: conf, table: board.Uno32()}
	if err := d.table.Validate(); err != nil {
		glog.Exit(err)
	}
	d.hw = board.NewSimHardware(d.table)

	u, err := url.Parse(conf.StreamURL)
	if err != nil {
		glog.Exitf("invalid stream URL: %v", err)
	}
	if conf.Trace || u.Scheme == "mqtt" {
		meta := mqtt.BoardMeta{
			Board:    d.table.Name,
			Firmware: firmwareName,
			Version:  fmt.Sprintf("%d.%d", firmata.FirmwareMajorVersion, firmata.FirmwareMinorVersion),
		}
		if d.queue, err = conf.NewBoardQueue(meta); err != nil {
			glog.Exit(err)
		}
		if conf.Trace {
			d.trace = conf.TraceWriter(d.queue)
		}
	}

	fx.NewRunner().HandleSignals().RunOrFail(d)
}
