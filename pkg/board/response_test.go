package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

func TestCapabilityRoundTrip(t *testing.T) {
	expect := Uno32()
	parsed, err := ParseCapabilityResponse(expect.CapabilityResponse())
	require.NoError(t, err)
	require.Len(t, parsed.Pins, len(expect.Pins))
	require.False(t, parsed.Pins[8].IsAnalog())
	require.NoError(t, parsed.ApplyAnalogMapping(expect.AnalogMappingResponse()))
	parsed.Name = expect.Name
	require.Equal(t, expect, parsed)
	require.Contains(t, parsed.String(), " 9: Input/1 Output/1 Servo/14 Analog/10 PWM/8 A1\n")
}

func TestParseCapabilityResponseInvalid(t *testing.T) {
	_, err := ParseCapabilityResponse([]byte{0, 1, 0x7F, 1})
	require.ErrorIs(t, err, ErrShortPayload)
	_, err = ParseCapabilityResponse([]byte{0, 1})
	require.Error(t, err)
	tbl, err := ParseCapabilityResponse(nil)
	require.NoError(t, err)
	require.Empty(t, tbl.Pins)
	require.Error(t, Uno32().ApplyAnalogMapping([]byte{0x7F}))
}

func TestPinStateResponse(t *testing.T) {
	bt := newBoardTest(t)
	bt.send(0xF4, 3, byte(firmata.PinModePWM))
	require.Empty(t, bt.send(append([]byte{0xF0, byte(firmata.ExtendedAnalog)}, append(ExtendedAnalogRequest(3, 200), 0xF7)...)...))
	require.Equal(t, uint16(200), bt.hw.Duty(3))

	_, err := bt.parser.Write([]byte{0xF0, byte(firmata.PinStateQuery), 3, 0xF7})
	require.NoError(t, err)
	out := bt.out.Bytes()
	require.Equal(t, []byte{0xF0, byte(firmata.PinStateResponse)}, out[:2])
	state, err := ParsePinStateResponse(out[2 : len(out)-1])
	require.NoError(t, err)
	require.Equal(t, PinState{Pin: 3, Mode: firmata.PinModePWM, State: 200}, state)

	_, err = ParsePinStateResponse([]byte{3, 1})
	require.ErrorIs(t, err, ErrShortPayload)
}

func TestSamplingIntervalRequest(t *testing.T) {
	payload, err := SamplingIntervalRequest(200 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte{0x48, 0x01}, payload)
	_, err = SamplingIntervalRequest(time.Hour)
	require.ErrorIs(t, err, firmata.ErrValueOutOfRange)

	bt := newBoardTest(t)
	bt.send(append([]byte{0xF0, byte(firmata.SamplingInterval)}, append(payload, 0xF7)...)...)
	require.Equal(t, 200*time.Millisecond, bt.board.SamplingInterval())
}
