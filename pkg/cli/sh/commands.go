package sh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/firmata.go/pkg/board"
	"github.com/robotalks/firmata.go/pkg/firmata"
	"github.com/robotalks/firmata.go/pkg/stream/mqtt"
)

func parseUint(arg, name string, max uint64) (uint64, error) {
	val, err := strconv.ParseUint(arg, 0, 32)
	if err != nil || val > max {
		return 0, fmt.Errorf("invalid %s: %q", name, arg)
	}
	return val, nil
}

func parseByte(arg, name string) (byte, error) {
	val, err := parseUint(arg, name, 0x7F)
	return byte(val), err
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off: %q", arg)
}

func parseMode(arg string) (firmata.PinMode, error) {
	for m := firmata.PinModeInput; m <= firmata.PinModePullup; m++ {
		if strings.EqualFold(m.String(), arg) {
			return m, nil
		}
	}
	val, err := parseUint(arg, "MODE", 0x7F)
	if err != nil {
		return 0, err
	}
	return firmata.PinMode(val), nil
}

// parseRaw parses hex bytes like "F0 6B F7" or "0xF9".
func parseRaw(args []string) ([]byte, error) {
	var out []byte
	for _, arg := range args {
		val, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		out = append(out, byte(val))
	}
	return out, nil
}

// requireArgs fails the command if there are fewer than n args.
func requireArgs(c *ishell.Context, n int, usage string) bool {
	if len(c.Args) < n {
		c.Err(fmt.Errorf("usage: %s %s", c.Cmd.Name, usage))
		return false
	}
	return true
}

// discover lists boards announced on MQTT.
func (s *Shell) discover() ([]mqtt.BoardInfo, error) {
	q, err := s.Config.NewQueue()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Connect(ctx); err != nil {
		return nil, err
	}
	defer q.Close()
	return mqtt.Discover(ctx, q, mqtt.DefaultDiscoverTimeout)
}

var (
	// DiscoverCmd discovers boards on MQTT.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			boards, err := s.discover()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(boards) == 0 {
					// in case boards is nil, make it empty slice.
					boards = []mqtt.BoardInfo{}
				}
				out, err := json.Marshal(boards)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(boards) == 0 {
				c.Println("No boards found")
				return
			}
			for _, info := range boards {
				c.Printf("%s: %s %s\n", info.ID, info.Meta.Board, info.Meta.Firmware)
			}
		},
	}

	// ConnectCmd connects a board by stream URL or MQTT board ID.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL|ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			target := s.Config.MQTTURL
			switch {
			case len(c.Args) > 0 && strings.Contains(c.Args[0], "://"):
				target = c.Args[0]
			case len(c.Args) > 0:
				s.Config.BoardID = c.Args[0]
			default:
				boards, err := s.discover()
				if err != nil {
					c.Err(err)
					return
				}
				if len(boards) == 0 {
					c.Err(fmt.Errorf("no board discovered"))
					return
				}
				index := 0
				if len(boards) > 1 {
					if !s.Interactive {
						c.Err(fmt.Errorf("more than 1 boards discovered in non-interactive mode"))
						return
					}
					items := make([]string, len(boards))
					for n, info := range boards {
						items[n] = info.ID + ": " + info.Meta.Board
					}
					index = s.Shell.MultiChoice(items, "Which one to connect?")
				}
				s.Config.BoardID = boards[index].ID
			}
			if err := s.Connect(target); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current board.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// VersionCmd queries the protocol version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"v"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			Request(c, KindVersion, func(e *firmata.Encoder) error {
				return e.SendVersionRequest()
			})
		}),
	}

	// FirmwareCmd queries the firmware name and version.
	FirmwareCmd = ishell.Cmd{
		Name:    "firmware",
		Aliases: []string{"fw"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			Request(c, KindFirmware, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.ReportFirmware)
			})
		}),
	}

	// ModeCmd sets pin mode.
	ModeCmd = ishell.Cmd{
		Name:    "mode",
		Aliases: []string{"m"},
		Help:    "PIN MODE(input|output|analog|pwm|servo|pullup|...)",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "PIN MODE") {
				return
			}
			pin, err := parseByte(c.Args[0], "PIN")
			if err != nil {
				c.Err(err)
				return
			}
			mode, err := parseMode(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendPinMode(pin, mode)
			})
		}),
	}

	// DigitalWriteCmd sets a digital output pin.
	DigitalWriteCmd = ishell.Cmd{
		Name:    "dwrite",
		Aliases: []string{"dw"},
		Help:    "PIN 0|1",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "PIN 0|1") {
				return
			}
			pin, err := parseByte(c.Args[0], "PIN")
			if err != nil {
				c.Err(err)
				return
			}
			level, err := parseOnOff(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			var value byte
			if level {
				value = 1
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendDigitalPinValue(pin, value)
			})
		}),
	}

	// DigitalPortCmd writes all pins of a port.
	DigitalPortCmd = ishell.Cmd{
		Name:    "dport",
		Aliases: []string{"dp"},
		Help:    "PORT VALUE",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "PORT VALUE") {
				return
			}
			port, err := parseUint(c.Args[0], "PORT", 0x0F)
			if err != nil {
				c.Err(err)
				return
			}
			value, err := parseUint(c.Args[1], "VALUE", 0xFF)
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendDigitalPort(byte(port), uint16(value))
			})
		}),
	}

	// AnalogWriteCmd writes PWM or servo value, using extended analog for
	// pins above 15 or values above 14 bits.
	AnalogWriteCmd = ishell.Cmd{
		Name:    "awrite",
		Aliases: []string{"aw"},
		Help:    "PIN VALUE",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "PIN VALUE") {
				return
			}
			pin, err := parseByte(c.Args[0], "PIN")
			if err != nil {
				c.Err(err)
				return
			}
			value, err := parseUint(c.Args[1], "VALUE", 0xFFFF)
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				if pin <= 0x0F && value <= firmata.MaxValue {
					return e.SendAnalog(pin, uint16(value))
				}
				return e.SendSysexMessage(firmata.ExtendedAnalog, board.ExtendedAnalogRequest(pin, uint16(value))...)
			})
		}),
	}

	// ReportAnalogCmd toggles analog reporting.
	ReportAnalogCmd = ishell.Cmd{
		Name:    "report-analog",
		Aliases: []string{"ra"},
		Help:    "CHANNEL on|off",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "CHANNEL on|off") {
				return
			}
			ch, err := parseUint(c.Args[0], "CHANNEL", 0x0F)
			if err != nil {
				c.Err(err)
				return
			}
			en, err := parseOnOff(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendReportAnalog(byte(ch), en)
			})
		}),
	}

	// ReportDigitalCmd toggles digital port reporting.
	ReportDigitalCmd = ishell.Cmd{
		Name:    "report-digital",
		Aliases: []string{"rd"},
		Help:    "PORT on|off",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 2, "PORT on|off") {
				return
			}
			port, err := parseUint(c.Args[0], "PORT", 0x0F)
			if err != nil {
				c.Err(err)
				return
			}
			en, err := parseOnOff(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendReportDigital(byte(port), en)
			})
		}),
	}

	// CapabilityCmd queries pin capabilities and analog mapping.
	CapabilityCmd = ishell.Cmd{
		Name:    "capability",
		Aliases: []string{"caps"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			host := s.Conn.Host
			r, err := host.Request(s.Conn.Ctx, KindCapability, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.CapabilityQuery)
			})
			if err != nil {
				c.Err(err)
				return
			}
			m, err := host.Request(s.Conn.Ctx, KindMapping, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.AnalogMappingQuery)
			})
			if err != nil {
				c.Err(err)
				return
			}
			if err := r.Value.(*board.Table).ApplyAnalogMapping(m.Value.([]byte)); err != nil {
				c.Err(err)
				return
			}
			s.PrintReply(c, r)
		}),
	}

	// MappingCmd queries analog channel of pins.
	MappingCmd = ishell.Cmd{
		Name:    "mapping",
		Aliases: []string{"map"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			r, err := s.Conn.Host.Request(s.Conn.Ctx, KindMapping, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.AnalogMappingQuery)
			})
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				s.PrintReply(c, r)
				return
			}
			for pin, ch := range r.Value.([]byte) {
				if ch != board.NoAnalogChannel {
					c.Printf("%2d: A%d\n", pin, ch)
				}
			}
		}),
	}

	// PinStateCmd queries the mode and state of a pin.
	PinStateCmd = ishell.Cmd{
		Name:    "pinstate",
		Aliases: []string{"ps"},
		Help:    "PIN",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 1, "PIN") {
				return
			}
			pin, err := parseByte(c.Args[0], "PIN")
			if err != nil {
				c.Err(err)
				return
			}
			Request(c, KindPinState, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.PinStateQuery, pin)
			})
		}),
	}

	// StringCmd sends a string message.
	StringCmd = ishell.Cmd{
		Name:    "string",
		Aliases: []string{"s"},
		Help:    "TEXT...",
		Func: MustBeConnected(func(c *ishell.Context) {
			Send(c, func(e *firmata.Encoder) error {
				return e.SendString(strings.Join(c.Args, " "))
			})
		}),
	}

	// IntervalCmd sets the sampling interval.
	IntervalCmd = ishell.Cmd{
		Name:    "interval",
		Aliases: []string{"i"},
		Help:    "MILLISECONDS",
		Func: MustBeConnected(func(c *ishell.Context) {
			if !requireArgs(c, 1, "MILLISECONDS") {
				return
			}
			ms, err := parseUint(c.Args[0], "MILLISECONDS", firmata.MaxValue)
			if err != nil {
				c.Err(err)
				return
			}
			payload, err := board.SamplingIntervalRequest(time.Duration(ms) * time.Millisecond)
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendSysexMessage(firmata.SamplingInterval, payload...)
			})
		}),
	}

	// ResetCmd resets the board.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			Send(c, func(e *firmata.Encoder) error {
				return e.SendSystemReset()
			})
		}),
	}

	// RawCmd sends raw bytes.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "HEX...",
		Func: MustBeConnected(func(c *ishell.Context) {
			data, err := parseRaw(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, func(e *firmata.Encoder) error {
				return e.SendMessage(data...)
			})
		}),
	}
)

func init() {
	AddCmds(
		&VersionCmd,
		&FirmwareCmd,
		&ModeCmd,
		&DigitalWriteCmd,
		&DigitalPortCmd,
		&AnalogWriteCmd,
		&ReportAnalogCmd,
		&ReportDigitalCmd,
		&CapabilityCmd,
		&MappingCmd,
		&PinStateCmd,
		&StringCmd,
		&IntervalCmd,
		&ResetCmd,
		&RawCmd,
	)
}
