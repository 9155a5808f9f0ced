package firmata

import (
	"io"
	"strings"
)

// MaxValue is the largest value fitting in two 7-bit bytes.
const MaxValue = 1<<14 - 1

// ComposeTwoByte splits a 14-bit value into LSB and MSB 7-bit bytes.
// Bits above 14 are dropped.
func ComposeTwoByte(value uint16) (lsb, msb byte) {
	return byte(value & 0x7F), byte((value >> 7) & 0x7F)
}

// DecodeTwoByte combines LSB and MSB 7-bit bytes into a 14-bit value.
func DecodeTwoByte(lsb, msb byte) uint16 {
	return uint16(lsb&0x7F) | uint16(msb&0x7F)<<7
}

// EncodeString encodes text using 14-bit pairs, one pair per rune.
// Runes beyond 14 bits can't be represented and fail with ErrValueOutOfRange.
func EncodeString(text string) ([]byte, error) {
	out := make([]byte, 0, len(text)*2)
	for _, r := range text {
		if r < 0 || r > MaxValue {
			return nil, ErrValueOutOfRange
		}
		lsb, msb := ComposeTwoByte(uint16(r))
		out = append(out, lsb, msb)
	}
	return out, nil
}

// DecodeString decodes text from 14-bit pairs.
func DecodeString(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", ErrOddPayload
	}
	var sb strings.Builder
	for i := 0; i < len(data); i += 2 {
		sb.WriteRune(rune(DecodeTwoByte(data[i], data[i+1])))
	}
	return sb.String(), nil
}

// Encoder writes messages to a stream.
type Encoder struct {
	W io.Writer
}

// NewEncoder creates an Encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{W: w}
}

// SendMessage writes raw bytes verbatim.
func (e *Encoder) SendMessage(msg ...byte) error {
	_, err := e.W.Write(msg)
	return err
}

// SendSysexMessage writes a Sysex message. Every payload byte must be 7-bit.
func (e *Encoder) SendSysexMessage(cmd SysexCommand, payload ...byte) error {
	if cmd >= 0x80 {
		return ErrInvalidSysexByte
	}
	for _, b := range payload {
		if b >= 0x80 {
			return ErrInvalidSysexByte
		}
	}
	msg := make([]byte, 0, len(payload)+3)
	msg = append(msg, byte(StartSysex), byte(cmd))
	msg = append(msg, payload...)
	msg = append(msg, byte(EndSysex))
	return e.SendMessage(msg...)
}

func (e *Encoder) sendValue(cmd Command, channel byte, value uint16) error {
	if channel > 0x0F || value > MaxValue {
		return ErrValueOutOfRange
	}
	lsb, msb := ComposeTwoByte(value)
	return e.SendMessage(byte(cmd)|channel, lsb, msb)
}

// SendAnalog writes ANALOG_MESSAGE.
func (e *Encoder) SendAnalog(channel byte, value uint16) error {
	return e.sendValue(AnalogMessage, channel, value)
}

// SendDigitalPort writes DIGITAL_MESSAGE.
func (e *Encoder) SendDigitalPort(port byte, value uint16) error {
	return e.sendValue(DigitalMessage, port, value)
}

// SendPinMode writes SET_PIN_MODE.
func (e *Encoder) SendPinMode(pin byte, mode PinMode) error {
	if pin >= 0x80 || mode >= 0x80 {
		return ErrValueOutOfRange
	}
	return e.SendMessage(byte(SetPinMode), pin, byte(mode))
}

// SendDigitalPinValue writes SET_DIGITAL_PIN_VALUE.
func (e *Encoder) SendDigitalPinValue(pin byte, value byte) error {
	if pin >= 0x80 || value >= 0x80 {
		return ErrValueOutOfRange
	}
	return e.SendMessage(byte(SetDigitalPinValue), pin, value)
}

func (e *Encoder) sendToggle(cmd Command, channel byte, enable bool) error {
	if channel > 0x0F {
		return ErrValueOutOfRange
	}
	var flag byte
	if enable {
		flag = 1
	}
	return e.SendMessage(byte(cmd)|channel, flag)
}

// SendReportAnalog writes REPORT_ANALOG.
func (e *Encoder) SendReportAnalog(channel byte, enable bool) error {
	return e.sendToggle(ReportAnalog, channel, enable)
}

// SendReportDigital writes REPORT_DIGITAL.
func (e *Encoder) SendReportDigital(port byte, enable bool) error {
	return e.sendToggle(ReportDigital, port, enable)
}

// SendVersionRequest writes a bare REPORT_VERSION.
func (e *Encoder) SendVersionRequest() error {
	return e.SendMessage(byte(ReportVersion))
}

// SendVersion writes the REPORT_VERSION reply.
func (e *Encoder) SendVersion(major, minor byte) error {
	if major >= 0x80 || minor >= 0x80 {
		return ErrValueOutOfRange
	}
	return e.SendMessage(byte(ReportVersion), major, minor)
}

// SendSystemReset writes SYSTEM_RESET.
func (e *Encoder) SendSystemReset() error {
	return e.SendMessage(byte(SystemReset))
}

// SendFirmware writes the REPORT_FIRMWARE reply.
func (e *Encoder) SendFirmware(major, minor byte, name string) error {
	encoded, err := EncodeString(name)
	if err != nil {
		return err
	}
	return e.SendSysexMessage(ReportFirmware, append([]byte{major, minor}, encoded...)...)
}

// SendString writes STRING_DATA.
func (e *Encoder) SendString(text string) error {
	encoded, err := EncodeString(text)
	if err != nil {
		return err
	}
	return e.SendSysexMessage(StringData, encoded...)
}
