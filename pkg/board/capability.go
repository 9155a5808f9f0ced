package board

import (
	"fmt"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

// NoAnalogChannel marks a pin without an analog channel.
const NoAnalogChannel byte = 0x7F

// ModeResolution is a supported pin mode with its resolution in bits.
type ModeResolution struct {
	Mode       firmata.PinMode
	Resolution byte
}

// PinCapability describes a single pin.
type PinCapability struct {
	Modes         []ModeResolution
	AnalogChannel byte
}

// Supports checks if the pin supports the mode.
func (c PinCapability) Supports(mode firmata.PinMode) bool {
	_, ok := c.Resolution(mode)
	return ok
}

// Resolution gets the resolution of the mode.
func (c PinCapability) Resolution(mode firmata.PinMode) (byte, bool) {
	for _, m := range c.Modes {
		if m.Mode == mode {
			return m.Resolution, true
		}
	}
	return 0, false
}

// IsAnalog indicates the pin has an analog channel.
func (c PinCapability) IsAnalog() bool {
	return c.AnalogChannel != NoAnalogChannel
}

// Table is the capability table of a board, indexed by pin number.
type Table struct {
	Name string
	Pins []PinCapability
}

// Pin gets the capability of a pin.
func (t *Table) Pin(pin byte) (PinCapability, bool) {
	if int(pin) >= len(t.Pins) {
		return PinCapability{}, false
	}
	return t.Pins[pin], true
}

// PinOfAnalogChannel finds the pin bound to the analog channel.
func (t *Table) PinOfAnalogChannel(ch byte) (byte, bool) {
	for n, c := range t.Pins {
		if c.IsAnalog() && c.AnalogChannel == ch {
			return byte(n), true
		}
	}
	return 0, false
}

// Ports is the number of 8-pin digital ports.
func (t *Table) Ports() int {
	return (len(t.Pins) + 7) / 8
}

// Validate checks the table fits in the protocol encoding.
func (t *Table) Validate() error {
	if len(t.Pins) > 0x7F {
		return fmt.Errorf("too many pins: %d", len(t.Pins))
	}
	for n, c := range t.Pins {
		if c.IsAnalog() && c.AnalogChannel > 0x0F {
			return fmt.Errorf("pin %d: analog channel %d out of range", n, c.AnalogChannel)
		}
		for _, m := range c.Modes {
			if m.Mode >= 0x7F || m.Resolution >= 0x80 {
				return fmt.Errorf("pin %d: invalid mode %s/%d", n, m.Mode, m.Resolution)
			}
		}
	}
	return nil
}

// CapabilityResponse encodes the CAPABILITY_RESPONSE payload: pairs of
// mode and resolution, each pin terminated by 0x7F.
func (t *Table) CapabilityResponse() []byte {
	var payload []byte
	for _, c := range t.Pins {
		for _, m := range c.Modes {
			payload = append(payload, byte(m.Mode), m.Resolution)
		}
		payload = append(payload, 0x7F)
	}
	return payload
}

// AnalogMappingResponse encodes the ANALOG_MAPPING_RESPONSE payload: the
// analog channel of each pin or 0x7F.
func (t *Table) AnalogMappingResponse() []byte {
	payload := make([]byte, len(t.Pins))
	for n, c := range t.Pins {
		payload[n] = c.AnalogChannel
	}
	return payload
}

func digitalPin() PinCapability {
	return PinCapability{
		Modes: []ModeResolution{
			{firmata.PinModeInput, 1},
			{firmata.PinModeOutput, 1},
			{firmata.PinModeServo, 14},
		},
		AnalogChannel: NoAnalogChannel,
	}
}

func (c PinCapability) withPWM() PinCapability {
	c.Modes = append(c.Modes, ModeResolution{firmata.PinModePWM, 8})
	return c
}

func (c PinCapability) withAnalog(ch byte) PinCapability {
	c.Modes = append(c.Modes, ModeResolution{firmata.PinModeAnalog, 10})
	c.AnalogChannel = ch
	return c
}

// Uno32 creates the capability table of an UNO32 style ESP32 board.
func Uno32() *Table {
	return &Table{
		Name: "Uno32",
		Pins: []PinCapability{
			digitalPin(),
			digitalPin(),
			digitalPin(),
			digitalPin().withPWM(),
			digitalPin(),
			digitalPin().withPWM(),
			digitalPin().withPWM(),
			digitalPin(),
			digitalPin().withAnalog(0),
			digitalPin().withAnalog(1).withPWM(),
			digitalPin().withAnalog(2).withPWM(),
			digitalPin().withAnalog(3).withPWM(),
			digitalPin().withAnalog(4),
			digitalPin().withAnalog(5),
		},
	}
}
