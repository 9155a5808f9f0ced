package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

// ParseCapabilityResponse decodes a CAPABILITY_RESPONSE payload into a
// Table. Analog channels are unknown until ApplyAnalogMapping.
func ParseCapabilityResponse(data []byte) (*Table, error) {
	t := &Table{}
	c := PinCapability{AnalogChannel: NoAnalogChannel}
	for n := 0; n < len(data); {
		if data[n] == 0x7F {
			t.Pins = append(t.Pins, c)
			c = PinCapability{AnalogChannel: NoAnalogChannel}
			n++
			continue
		}
		if n+1 >= len(data) {
			return nil, fmt.Errorf("pin %d: %w", len(t.Pins), ErrShortPayload)
		}
		c.Modes = append(c.Modes, ModeResolution{Mode: firmata.PinMode(data[n]), Resolution: data[n+1]})
		n += 2
	}
	if len(c.Modes) > 0 {
		return nil, fmt.Errorf("pin %d: unterminated", len(t.Pins))
	}
	return t, nil
}

// ApplyAnalogMapping sets analog channels from an ANALOG_MAPPING_RESPONSE
// payload.
func (t *Table) ApplyAnalogMapping(data []byte) error {
	if len(data) != len(t.Pins) {
		return fmt.Errorf("analog mapping of %d pins for %d pins", len(data), len(t.Pins))
	}
	for n, ch := range data {
		t.Pins[n].AnalogChannel = ch
	}
	return nil
}

// String formats the table one pin per line.
func (t *Table) String() string {
	var sb strings.Builder
	for n, c := range t.Pins {
		fmt.Fprintf(&sb, "%2d:", n)
		for _, m := range c.Modes {
			fmt.Fprintf(&sb, " %s/%d", m.Mode, m.Resolution)
		}
		if c.IsAnalog() {
			fmt.Fprintf(&sb, " A%d", c.AnalogChannel)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PinState is a decoded PIN_STATE_RESPONSE.
type PinState struct {
	Pin   byte
	Mode  firmata.PinMode
	State uint16
}

// ParsePinStateResponse decodes a PIN_STATE_RESPONSE payload.
func ParsePinStateResponse(data []byte) (PinState, error) {
	if len(data) < 3 {
		return PinState{}, ErrShortPayload
	}
	state, err := decode7Bit(data[2:])
	if err != nil {
		return PinState{}, err
	}
	return PinState{Pin: data[0], Mode: firmata.PinMode(data[1]), State: state}, nil
}

// ExtendedAnalogRequest encodes an EXTENDED_ANALOG payload.
func ExtendedAnalogRequest(pin byte, value uint16) []byte {
	return append([]byte{pin}, encode7Bit(value)...)
}

// SamplingIntervalRequest encodes a SAMPLING_INTERVAL payload.
func SamplingIntervalRequest(interval time.Duration) ([]byte, error) {
	ms := interval / time.Millisecond
	if ms < 0 || ms > firmata.MaxValue {
		return nil, firmata.ErrValueOutOfRange
	}
	lsb, msb := firmata.ComposeTwoByte(uint16(ms))
	return []byte{lsb, msb}, nil
}
