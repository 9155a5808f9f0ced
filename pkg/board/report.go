package board

import (
	"github.com/robotalks/firmata.go/pkg/firmata"
	fx "github.com/robotalks/firmata.go/pkg/framework"
)

// analogBits is the resolution of analog values on the wire.
const analogBits = 10

// Report sends analog values of enabled channels and values of enabled
// digital ports which have changed since last report.
func (b *Board) Report() error {
	var errs fx.AggregatedError
	for ch := byte(0); ch < 16; ch++ {
		if b.AnalogReporting(ch) {
			errs.Add(b.reportAnalog(ch))
		}
	}
	for port := byte(0); int(port) < b.Table.Ports(); port++ {
		if b.DigitalReporting(port) {
			errs.Add(b.reportPort(port, false))
		}
	}
	return errs.Aggregate()
}

func (b *Board) reportAnalog(ch byte) error {
	value, err := b.Hardware.AnalogRead(ch)
	if err != nil {
		return err
	}
	if b.ADCBits > analogBits {
		value >>= b.ADCBits - analogBits
	} else {
		value <<= analogBits - b.ADCBits
	}
	return b.Encoder.SendAnalog(ch, value)
}

// portValue reads input pins of the port. Output pins report the level
// last written.
func (b *Board) portValue(port byte) (uint16, error) {
	var value uint16
	for bit := byte(0); bit < 8; bit++ {
		pin := port*8 + bit
		mode, ok := b.PinMode(pin)
		if !ok {
			break
		}
		var level byte
		switch mode {
		case firmata.PinModeInput, firmata.PinModePullup:
			l, err := b.Hardware.DigitalRead(pin)
			if err != nil {
				return 0, err
			}
			level = l
		case firmata.PinModeOutput:
			level = byte(b.values[pin])
		}
		value |= uint16(level&1) << bit
	}
	return value, nil
}

func (b *Board) reportPort(port byte, force bool) error {
	value, err := b.portValue(port)
	if err != nil {
		return err
	}
	if !force && value == b.reportedPorts[port] {
		return nil
	}
	b.reportedPorts[port] = value
	return b.Encoder.SendDigitalPort(port, value)
}
