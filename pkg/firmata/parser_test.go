package firmata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sysex(cmd SysexCommand, payload ...byte) []byte {
	b := append([]byte{byte(StartSysex), byte(cmd)}, payload...)
	return append(b, byte(EndSysex))
}

func concat(seqs ...[]byte) []byte {
	var out []byte
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		calls  []string
		errs   []error
		host   bool
		expect ParseMode
	}{
		{
			name:  "analog message",
			in:    []byte{0xE0, 0x05, 0x01, 0xE3, 0x7F, 0x7F},
			calls: []string{"analog(0,133)", "analog(3,16383)"},
		},
		{
			name:  "digital message",
			in:    []byte{0x92, 0x7F, 0x01},
			calls: []string{"digital(2,255)"},
		},
		{
			name:  "set pin mode",
			in:    []byte{0xF4, 13, 0x01, 0xF4, 2, 0x03},
			calls: []string{"mode(13,Output)", "mode(2,PWM)"},
		},
		{
			name:  "set digital pin value",
			in:    []byte{0xF5, 13, 1},
			calls: []string{"pin(13,1)"},
		},
		{
			name:  "report toggles",
			in:    []byte{0xC1, 1, 0xD0, 0, 0xDF, 1},
			calls: []string{"reportAnalog(1,true)", "reportDigital(0,false)", "reportDigital(15,true)"},
		},
		{
			name:  "version request",
			in:    []byte{0xF9},
			calls: []string{"version()"},
		},
		{
			name:  "system reset",
			in:    []byte{0xFF},
			calls: []string{"reset()"},
		},
		{
			name:  "bare firmware query",
			in:    sysex(ReportFirmware),
			calls: []string{`firmware(0,0,"")`},
		},
		{
			name:  "firmware query with major only",
			in:    sysex(ReportFirmware, 2),
			calls: []string{`firmware(0,0,"")`},
		},
		{
			name:  "firmware report",
			in:    sysex(ReportFirmware, 2, 5, 'A', 0, 'b', 0),
			calls: []string{`firmware(2,5,"Ab")`},
		},
		{
			name:  "firmware report without name",
			in:    sysex(ReportFirmware, 2, 5),
			calls: []string{`firmware(2,5,"")`},
		},
		{
			name:  "string message",
			in:    sysex(StringData, 'A', 0, 0x69, 0x01),
			calls: []string{`string("Aé")`},
		},
		{
			name:  "generic sysex",
			in:    concat(sysex(CapabilityQuery), sysex(PinStateQuery, 3)),
			calls: []string{"sysex(CapabilityQuery,[])", "sysex(PinStateQuery,[3])"},
		},
		{
			name: "empty sysex",
			in:   []byte{0xF0, 0xF7},
		},
		{
			name:  "unknown bytes are dropped",
			in:    []byte{0x01, 0x7F, 0xA0, 0xF1, 0xF7, 0xE0, 0x01, 0x00},
			calls: []string{"analog(0,1)"},
		},
		{
			name:  "reset discards partial command",
			in:    []byte{0xE0, 0x01, 0xFF, 0xE1, 0x02, 0x00},
			calls: []string{"reset()", "analog(1,2)"},
			errs:  []error{ErrUnexpectedCommandByte},
		},
		{
			name:  "command byte resyncs argument collection",
			in:    []byte{0xE0, 0x01, 0xE1, 0x02, 0x00},
			calls: []string{"analog(1,2)"},
			errs:  []error{ErrUnexpectedCommandByte},
		},
		{
			name:   "command byte left in argument mode",
			in:     []byte{0xF4, 0x01, 0x90},
			errs:   []error{ErrUnexpectedCommandByte},
			expect: ModeArguments,
		},
		{
			name: "odd string payload",
			in:   sysex(StringData, 'A'),
			errs: []error{ErrOddPayload},
		},
		{
			name: "odd firmware name",
			in:   sysex(ReportFirmware, 2, 5, 'A'),
			errs: []error{ErrOddPayload},
		},
		{
			name:  "sysex at capacity",
			in:    sysex(SamplingInterval, repeat(1, MaxSize-1)...),
			calls: []string{"sysex(SamplingInterval," + formatBytes(repeat(1, MaxSize-1)) + ")"},
		},
		{
			name:  "sysex overflow",
			in:    concat(sysex(SamplingInterval, repeat(1, MaxSize)...), []byte{0xF9}),
			calls: []string{"version()"},
			errs:  []error{ErrSysexOverflow},
		},
		{
			name:  "version reply on host",
			in:    []byte{0xF9, 2, 5},
			calls: []string{"versionReport(2,5)"},
			host:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var rec recorder
			parser := NewParser(&rec)
			parser.ExpectVersionReply = tc.host
			var errs []error
			for _, b := range tc.in {
				if err := parser.Feed(b); err != nil {
					require.True(t, IsMalformed(err))
					errs = append(errs, err)
				}
			}
			require.Equal(t, tc.calls, rec.calls)
			require.Len(t, errs, len(tc.errs))
			for n, err := range errs {
				require.Truef(t, errors.Is(err, tc.errs[n]), "errs[%d]: %v", n, err)
			}
			require.Equal(t, tc.expect, parser.Mode())

			// chunking must not matter.
			var batched recorder
			parser = NewParser(&batched)
			parser.ExpectVersionReply = tc.host
			n, err := parser.Write(tc.in)
			require.Equal(t, len(tc.in), n)
			require.Equal(t, rec.calls, batched.calls)
			if len(tc.errs) > 0 {
				require.True(t, errors.Is(err, tc.errs[0]))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func formatBytes(b []byte) string {
	var rec recorder
	rec.add("%v", b)
	return rec.calls[0]
}

func TestParserChunking(t *testing.T) {
	in := concat(
		[]byte{0xE0, 0x05, 0x01, 0x01, 0xF4, 13, 0x01},
		sysex(ReportFirmware, 2, 5, 'F', 0),
		[]byte{0xE0, 0x01, 0x91, 0x01, 0x00},
		sysex(StringData, 'h', 0, 'i', 0),
		[]byte{0xC0, 1, 0xF9, 0xFF},
	)
	var whole recorder
	_, err := NewParser(&whole).Write(in)
	require.True(t, errors.Is(err, ErrUnexpectedCommandByte))
	require.Len(t, whole.calls, 8)

	for size := 1; size <= len(in); size++ {
		var chunked recorder
		parser := NewParser(&chunked)
		for off := 0; off < len(in); off += size {
			end := off + size
			if end > len(in) {
				end = len(in)
			}
			parser.Write(in[off:end])
		}
		require.Equalf(t, whole.calls, chunked.calls, "chunk size %d", size)
	}
}

func TestParserReset(t *testing.T) {
	var rec recorder
	parser := NewParser(&rec)
	for _, b := range []byte{0xF0, 0x71, 0x41} {
		require.NoError(t, parser.Feed(b))
	}
	require.Equal(t, ModeSysex, parser.Mode())
	parser.Reset()
	require.Equal(t, ModeCommand, parser.Mode())
	require.Equal(t, []string{"reset()"}, rec.calls)

	// payload bytes left over from the discarded sysex are ignored.
	for _, b := range []byte{0x00, 0xF7, 0xE2, 0x03, 0x00} {
		require.NoError(t, parser.Feed(b))
	}
	require.Equal(t, []string{"reset()", "analog(2,3)"}, rec.calls)
}

func TestParserWithoutDispatcher(t *testing.T) {
	var parser Parser
	_, err := parser.Write(concat([]byte{0xE0, 1, 1, 0xF9, 0xFF}, sysex(ReportFirmware)))
	require.NoError(t, err)
	require.Equal(t, ModeCommand, parser.Mode())
}

func TestParseError(t *testing.T) {
	var parser Parser
	_, err := parser.Write(concat([]byte{0xF0, byte(I2CRequest)}, repeat(0, MaxSize)))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, StartSysex, pe.Command)
	require.Equal(t, I2CRequest, pe.Sysex)
	require.Equal(t, "parse StartSysex I2CRequest: sysex payload overflow", pe.Error())

	_, err = parser.Write([]byte{0xF4, 0x80})
	require.True(t, errors.As(err, &pe))
	require.Equal(t, SetPinMode, pe.Command)
	require.Equal(t, "parse SetPinMode: unexpected command byte", pe.Error())
}

func TestParserMaxSysexSize(t *testing.T) {
	payload := repeat(0x7F, MaxSize*2)
	var rec recorder
	parser := Parser{Dispatcher: &rec, MaxSysexSize: MaxSize*2 + 1}
	_, err := parser.Write(sysex(CapabilityResponse, payload...))
	require.NoError(t, err)
	require.Equal(t, []string{"sysex(CapabilityResponse," + formatBytes(payload) + ")"}, rec.calls)
}
