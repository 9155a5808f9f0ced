package board

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

// Defaults of a Board.
const (
	DefaultFirmwareName     = "StandardFirmata.ino"
	DefaultSamplingInterval = 19 * time.Millisecond
	MinSamplingInterval     = time.Millisecond
	// DefaultADCBits is the ADC resolution of ESP32.
	DefaultADCBits = 12
)

// Board is a board driver reacting to decoded commands.
// It must be used from the goroutine feeding its Parser.
type Board struct {
	Table        *Table
	Hardware     Hardware
	Encoder      *firmata.Encoder
	FirmwareName string
	ADCBits      uint

	modes            []firmata.PinMode
	values           []uint16
	analogReporting  uint16
	digitalReporting uint16
	reportedPorts    []uint16
	samplingInterval time.Duration
}

// New creates a Board writing replies to w.
func New(t *Table, hw Hardware, w io.Writer) *Board {
	b := &Board{
		Table:        t,
		Hardware:     hw,
		Encoder:      firmata.NewEncoder(w),
		FirmwareName: DefaultFirmwareName,
		ADCBits:      DefaultADCBits,
	}
	b.resetState()
	return b
}

// SamplingInterval gets the reporting period.
func (b *Board) SamplingInterval() time.Duration {
	return b.samplingInterval
}

// PinMode gets the current mode of a pin.
func (b *Board) PinMode(pin byte) (firmata.PinMode, bool) {
	if int(pin) >= len(b.modes) {
		return 0, false
	}
	return b.modes[pin], true
}

// AnalogReporting checks if the analog channel is being reported.
func (b *Board) AnalogReporting(ch byte) bool {
	return ch < 16 && b.analogReporting&(1<<ch) != 0
}

// DigitalReporting checks if the port is being reported.
func (b *Board) DigitalReporting(port byte) bool {
	return port < 16 && b.digitalReporting&(1<<port) != 0
}

// Announce sends version and firmware, as a board does after boot.
func (b *Board) Announce() error {
	if err := b.Encoder.SendVersion(firmata.ProtocolMajorVersion, firmata.ProtocolMinorVersion); err != nil {
		return err
	}
	return b.sendFirmware()
}

func (b *Board) resetState() {
	n := len(b.Table.Pins)
	b.modes = make([]firmata.PinMode, n)
	b.values = make([]uint16, n)
	b.reportedPorts = make([]uint16, b.Table.Ports())
	b.analogReporting, b.digitalReporting = 0, 0
	b.samplingInterval = DefaultSamplingInterval
	for pin, c := range b.Table.Pins {
		mode := firmata.PinModeOutput
		if c.IsAnalog() {
			mode = firmata.PinModeAnalog
		}
		if !c.Supports(mode) {
			continue
		}
		b.modes[pin] = mode
		b.check("reset pin", b.Hardware.SetPinMode(byte(pin), mode))
	}
}

func (b *Board) check(op string, err error) bool {
	if err != nil {
		glog.Warningf("%s: %v", op, err)
		return false
	}
	return true
}

func (b *Board) sendFirmware() error {
	return b.Encoder.SendFirmware(firmata.FirmwareMajorVersion, firmata.FirmwareMinorVersion, b.FirmwareName)
}

func (b *Board) analogWrite(pin byte, value uint16) error {
	mode, ok := b.PinMode(pin)
	if !ok {
		return ErrNoSuchPin
	}
	switch mode {
	case firmata.PinModePWM, firmata.PinModeServo:
		if err := b.Hardware.PWMWrite(pin, value); err != nil {
			return err
		}
		b.values[pin] = value
		return nil
	}
	return fmt.Errorf("%w: pin %d is %s", ErrUnsupportedMode, pin, mode)
}

// OnAnalogValue implements Dispatcher. The channel is the pin number.
func (b *Board) OnAnalogValue(channel byte, value uint16) {
	b.check("analog write", b.analogWrite(channel, value))
}

// OnDigitalValue implements Dispatcher.
func (b *Board) OnDigitalValue(port byte, value uint16) {
	for bit := byte(0); bit < 8; bit++ {
		pin := port*8 + bit
		mode, ok := b.PinMode(pin)
		if !ok {
			break
		}
		if mode != firmata.PinModeOutput {
			continue
		}
		level := byte(value>>bit) & 1
		if b.check("digital write", b.Hardware.DigitalWrite(pin, level)) {
			b.values[pin] = uint16(level)
		}
	}
}

// OnPinModeChange implements Dispatcher.
func (b *Board) OnPinModeChange(pin byte, mode firmata.PinMode) {
	c, ok := b.Table.Pin(pin)
	if !ok {
		b.check("set pin mode", ErrNoSuchPin)
		return
	}
	supported := mode == firmata.PinModeIgnore || c.Supports(mode) ||
		(mode == firmata.PinModePullup && c.Supports(firmata.PinModeInput))
	if !supported {
		b.check("set pin mode", fmt.Errorf("%w: pin %d %s", ErrUnsupportedMode, pin, mode))
		return
	}
	if c.IsAnalog() && mode != firmata.PinModeAnalog {
		b.analogReporting &^= 1 << c.AnalogChannel
	}
	if mode != firmata.PinModeIgnore && !b.check("set pin mode", b.Hardware.SetPinMode(pin, mode)) {
		return
	}
	b.modes[pin], b.values[pin] = mode, 0
	glog.V(2).Infof("pin %d mode %s", pin, mode)
}

// OnDigitalPinValueSet implements Dispatcher.
func (b *Board) OnDigitalPinValueSet(pin byte, value byte) {
	mode, ok := b.PinMode(pin)
	if !ok {
		b.check("set pin value", ErrNoSuchPin)
		return
	}
	if mode != firmata.PinModeOutput {
		b.check("set pin value", fmt.Errorf("%w: pin %d is %s", ErrUnsupportedMode, pin, mode))
		return
	}
	if b.check("digital write", b.Hardware.DigitalWrite(pin, value&1)) {
		b.values[pin] = uint16(value & 1)
	}
}

// OnReportAnalogToggle implements Dispatcher.
func (b *Board) OnReportAnalogToggle(channel byte, enable bool) {
	if _, ok := b.Table.PinOfAnalogChannel(channel); !ok {
		b.check("report analog", ErrNoSuchPin)
		return
	}
	if !enable {
		b.analogReporting &^= 1 << channel
		return
	}
	b.analogReporting |= 1 << channel
	b.check("report analog", b.reportAnalog(channel))
}

// OnReportDigitalToggle implements Dispatcher.
func (b *Board) OnReportDigitalToggle(port byte, enable bool) {
	if int(port) >= b.Table.Ports() {
		b.check("report digital", ErrNoSuchPin)
		return
	}
	if !enable {
		b.digitalReporting &^= 1 << port
		return
	}
	b.digitalReporting |= 1 << port
	b.check("report digital", b.reportPort(port, true))
}

// OnReportVersionRequest implements Dispatcher.
func (b *Board) OnReportVersionRequest() {
	b.check("report version", b.Encoder.SendVersion(firmata.ProtocolMajorVersion, firmata.ProtocolMinorVersion))
}

// OnSystemReset implements Dispatcher.
func (b *Board) OnSystemReset() {
	glog.Info("system reset")
	b.resetState()
}

// OnFirmwareReport implements Dispatcher. On the board side it's a query.
func (b *Board) OnFirmwareReport(major, minor byte, name string) {
	b.check("report firmware", b.sendFirmware())
}

// OnStringMessage implements Dispatcher.
func (b *Board) OnStringMessage(text string) {
	glog.Infof("host: %s", text)
}

// OnSysexCommand implements Dispatcher.
func (b *Board) OnSysexCommand(cmd firmata.SysexCommand, data []byte) {
	var err error
	switch cmd {
	case firmata.CapabilityQuery:
		err = b.Encoder.SendSysexMessage(firmata.CapabilityResponse, b.Table.CapabilityResponse()...)
	case firmata.AnalogMappingQuery:
		err = b.Encoder.SendSysexMessage(firmata.AnalogMappingResponse, b.Table.AnalogMappingResponse()...)
	case firmata.PinStateQuery:
		err = b.pinState(data)
	case firmata.ExtendedAnalog:
		err = b.extendedAnalog(data)
	case firmata.SamplingInterval:
		err = b.setSamplingInterval(data)
	default:
		glog.V(2).Infof("unsupported sysex %s (%d bytes)", cmd, len(data))
		return
	}
	b.check(cmd.String(), err)
}

func (b *Board) pinState(data []byte) error {
	if len(data) < 1 {
		return ErrShortPayload
	}
	pin := data[0]
	mode, ok := b.PinMode(pin)
	if !ok {
		return ErrNoSuchPin
	}
	state := b.values[pin]
	if mode == firmata.PinModeInput || mode == firmata.PinModePullup {
		level, err := b.Hardware.DigitalRead(pin)
		if err != nil {
			return err
		}
		state = uint16(level)
	}
	return b.Encoder.SendSysexMessage(firmata.PinStateResponse, append([]byte{pin, byte(mode)}, encode7Bit(state)...)...)
}

func (b *Board) extendedAnalog(data []byte) error {
	if len(data) < 2 {
		return ErrShortPayload
	}
	value, err := decode7Bit(data[1:])
	if err != nil {
		return err
	}
	return b.analogWrite(data[0], value)
}

func (b *Board) setSamplingInterval(data []byte) error {
	if len(data) != 2 {
		return ErrShortPayload
	}
	interval := time.Duration(firmata.DecodeTwoByte(data[0], data[1])) * time.Millisecond
	if interval < MinSamplingInterval {
		interval = MinSamplingInterval
	}
	b.samplingInterval = interval
	glog.V(2).Infof("sampling interval %v", interval)
	return nil
}

// encode7Bit splits value into 7-bit bytes LSB first, at least one byte.
func encode7Bit(value uint16) []byte {
	out := []byte{byte(value & 0x7F)}
	for value >>= 7; value > 0; value >>= 7 {
		out = append(out, byte(value&0x7F))
	}
	return out
}

func decode7Bit(data []byte) (uint16, error) {
	var value uint32
	for n, d := range data {
		value |= uint32(d&0x7F) << (7 * uint(n))
		if value > 0xFFFF {
			return 0, firmata.ErrValueOutOfRange
		}
	}
	return uint16(value), nil
}
