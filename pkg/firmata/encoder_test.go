package firmata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTwoByteRoundTrip(t *testing.T) {
	for v := uint16(0); v <= MaxValue; v++ {
		lsb, msb := ComposeTwoByte(v)
		require.True(t, lsb < 0x80 && msb < 0x80)
		require.Equal(t, v, DecodeTwoByte(lsb, msb))
	}
}

func TestStringCodec(t *testing.T) {
	encoded, err := EncodeString("Firmata π")
	require.NoError(t, err)
	require.Len(t, encoded, 18)
	text, err := DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, "Firmata π", text)

	_, err = EncodeString("\U0001F600")
	require.Equal(t, ErrValueOutOfRange, err)
	_, err = DecodeString([]byte{1, 2, 3})
	require.Equal(t, ErrOddPayload, err)
}

func TestEncoder(t *testing.T) {
	testCases := []struct {
		name   string
		send   func(*Encoder) error
		expect []byte
	}{
		{"analog", func(e *Encoder) error { return e.SendAnalog(2, 1023) }, []byte{0xE2, 0x7F, 0x07}},
		{"digital port", func(e *Encoder) error { return e.SendDigitalPort(1, 0x81) }, []byte{0x91, 0x01, 0x01}},
		{"pin mode", func(e *Encoder) error { return e.SendPinMode(13, PinModeOutput) }, []byte{0xF4, 13, 1}},
		{"pin value", func(e *Encoder) error { return e.SendDigitalPinValue(13, 1) }, []byte{0xF5, 13, 1}},
		{"report analog", func(e *Encoder) error { return e.SendReportAnalog(3, true) }, []byte{0xC3, 1}},
		{"report digital", func(e *Encoder) error { return e.SendReportDigital(0, false) }, []byte{0xD0, 0}},
		{"version request", func(e *Encoder) error { return e.SendVersionRequest() }, []byte{0xF9}},
		{"version", func(e *Encoder) error { return e.SendVersion(2, 5) }, []byte{0xF9, 2, 5}},
		{"reset", func(e *Encoder) error { return e.SendSystemReset() }, []byte{0xFF}},
		{"sysex", func(e *Encoder) error { return e.SendSysexMessage(CapabilityQuery) }, []byte{0xF0, 0x6B, 0xF7}},
		{"firmware", func(e *Encoder) error { return e.SendFirmware(2, 5, "Go") }, []byte{0xF0, 0x79, 2, 5, 'G', 0, 'o', 0, 0xF7}},
		{"string", func(e *Encoder) error { return e.SendString("é") }, []byte{0xF0, 0x71, 0x69, 0x01, 0xF7}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.send(NewEncoder(&buf)))
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

func TestEncoderRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.Equal(t, ErrInvalidSysexByte, enc.SendSysexMessage(CapabilityResponse, 1, 0x80))
	require.Equal(t, ErrInvalidSysexByte, enc.SendSysexMessage(SysexCommand(0xF7)))
	require.Equal(t, ErrValueOutOfRange, enc.SendAnalog(16, 0))
	require.Equal(t, ErrValueOutOfRange, enc.SendAnalog(0, MaxValue+1))
	require.Equal(t, ErrValueOutOfRange, enc.SendPinMode(0x80, PinModeInput))
	require.Equal(t, ErrValueOutOfRange, enc.SendReportDigital(16, true))
	require.Equal(t, ErrValueOutOfRange, enc.SendVersion(0x80, 0))
	require.Zero(t, buf.Len())
}

func TestEncoderToParser(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.SendAnalog(5, 12345))
	require.NoError(t, enc.SendDigitalPort(0, 0x55))
	require.NoError(t, enc.SendPinMode(9, PinModeServo))
	require.NoError(t, enc.SendFirmware(FirmwareMajorVersion, FirmwareMinorVersion, "StandardFirmata.ino"))
	require.NoError(t, enc.SendString("hello"))
	require.NoError(t, enc.SendSysexMessage(ExtendedAnalog, 20, 1, 2))
	require.NoError(t, enc.SendSystemReset())

	var rec recorder
	_, err := NewParser(&rec).Write(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{
		"analog(5,12345)",
		"digital(0,85)",
		"mode(9,Servo)",
		`firmware(2,5,"StandardFirmata.ino")`,
		`string("hello")`,
		"sysex(ExtendedAnalog,[20 1 2])",
		"reset()",
	}, rec.calls)
}

func TestNames(t *testing.T) {
	require.Equal(t, "AnalogMessage", AnalogMessage.String())
	require.Equal(t, "Command(0x01)", Command(1).String())
	require.Equal(t, "ReportFirmware", ReportFirmware.String())
	require.Equal(t, "SysexCommand(0x01)", SysexCommand(1).String())
	require.Equal(t, "Pullup", PinModePullup.String())
	require.Equal(t, "Ignore", PinModeIgnore.String())
	mode, ok := ParsePinMode("Servo")
	require.True(t, ok)
	require.Equal(t, PinModeServo, mode)
	_, ok = ParsePinMode("servo")
	require.False(t, ok)
}
