package sh

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/firmata.go/pkg/board"
	"github.com/robotalks/firmata.go/pkg/firmata"
)

type pipeStream struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipeStream) Close() error {
	for _, c := range p.closers {
		c.Close()
	}
	return nil
}

type hostTest struct {
	hw      *board.SimHardware
	host    *Host
	reports chan Reply
	cancel  func()
}

func newHostTest(t *testing.T) *hostTest {
	hostR, devW := io.Pipe()
	devR, hostW := io.Pipe()
	ht := &hostTest{
		hw:      board.NewSimHardware(board.Uno32()),
		reports: make(chan Reply, 16),
	}
	dev := board.NewDevice(&pipeStream{Reader: devR, Writer: devW}, board.Uno32(), ht.hw)
	dev.Announce = false
	ht.host = NewHost(&pipeStream{Reader: hostR, Writer: hostW, closers: []io.Closer{hostR, hostW, devR, devW}})
	ht.host.OnReport = func(r Reply) {
		select {
		case ht.reports <- r:
		default:
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	ht.cancel = cancel
	go dev.Run(ctx)
	go ht.host.Run(ctx)
	t.Cleanup(cancel)
	return ht
}

func (ht *hostTest) request(t *testing.T, kind string, send func(*firmata.Encoder) error) Reply {
	r, err := ht.host.Request(context.Background(), kind, send)
	require.NoError(t, err)
	require.Equal(t, kind, r.Kind)
	return r
}

func TestHostRequests(t *testing.T) {
	ht := newHostTest(t)

	r := ht.request(t, KindVersion, func(e *firmata.Encoder) error {
		return e.SendVersionRequest()
	})
	require.Equal(t, "2.5", r.Value)

	r = ht.request(t, KindFirmware, func(e *firmata.Encoder) error {
		return e.SendSysexMessage(firmata.ReportFirmware)
	})
	require.Equal(t, Firmware{Major: 2, Minor: 5, Name: board.DefaultFirmwareName}, r.Value)
	require.Equal(t, "StandardFirmata.ino 2.5", r.String())

	r = ht.request(t, KindCapability, func(e *firmata.Encoder) error {
		return e.SendSysexMessage(firmata.CapabilityQuery)
	})
	tbl := r.Value.(*board.Table)
	require.Len(t, tbl.Pins, 14)

	r = ht.request(t, KindMapping, func(e *firmata.Encoder) error {
		return e.SendSysexMessage(firmata.AnalogMappingQuery)
	})
	require.NoError(t, tbl.ApplyAnalogMapping(r.Value.([]byte)))
	require.Equal(t, board.Uno32().Pins, tbl.Pins)

	require.NoError(t, ht.host.Encoder.SendPinMode(13, firmata.PinModeOutput))
	require.NoError(t, ht.host.Encoder.SendDigitalPinValue(13, 1))
	r = ht.request(t, KindPinState, func(e *firmata.Encoder) error {
		return e.SendSysexMessage(firmata.PinStateQuery, 13)
	})
	require.Equal(t, board.PinState{Pin: 13, Mode: firmata.PinModeOutput, State: 1}, r.Value)
	require.Equal(t, "pin 13 Output 1", r.String())
	require.Equal(t, byte(1), ht.hw.Level(13))
}

func TestHostReports(t *testing.T) {
	ht := newHostTest(t)
	ht.hw.SetAnalog(2, 4095)
	require.NoError(t, ht.host.Encoder.SendReportAnalog(2, true))
	select {
	case r := <-ht.reports:
		require.Equal(t, Reply{Kind: KindAnalog, Value: AnalogValue{Channel: 2, Value: 1023}}, r)
		require.Equal(t, "A2 = 1023", r.String())
	case <-time.After(time.Second):
		t.Fatal("analog report timeout")
	}
}

func TestHostTimeout(t *testing.T) {
	ht := newHostTest(t)
	ht.host.Timeout = 50 * time.Millisecond
	_, err := ht.host.Request(context.Background(), KindSysex, func(e *firmata.Encoder) error {
		return e.SendSysexMessage(firmata.SysexCommand(0x01))
	})
	require.ErrorIs(t, err, ErrTimeout)
	ht.host.lock.Lock()
	require.Empty(t, ht.host.waiters[KindSysex])
	ht.host.lock.Unlock()
}

func TestReplyString(t *testing.T) {
	testCases := []struct {
		reply  Reply
		expect string
	}{
		{Reply{KindDigital, DigitalValue{Port: 1, Value: 5}}, "port 1 = 00000101"},
		{Reply{KindSysex, Sysex{Command: firmata.I2CReply, Data: []byte{1, 2}}}, "sysex I2CReply 01 02"},
		{Reply{KindString, "hello"}, "string hello"},
		{Reply{KindVersion, "2.5"}, "version 2.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.reply.String())
		})
	}
}

func TestParseArgs(t *testing.T) {
	data, err := parseRaw([]string{"F0", "0x6b", "f7"})
	require.NoError(t, err)
	require.Equal(t, []byte{0xF0, 0x6B, 0xF7}, data)
	_, err = parseRaw([]string{"100"})
	require.Error(t, err)

	mode, err := parseMode("pwm")
	require.NoError(t, err)
	require.Equal(t, firmata.PinModePWM, mode)
	mode, err = parseMode("11")
	require.NoError(t, err)
	require.Equal(t, firmata.PinModePullup, mode)
	_, err = parseMode("fast")
	require.Error(t, err)

	en, err := parseOnOff("ON")
	require.NoError(t, err)
	require.True(t, en)
	_, err = parseOnOff("maybe")
	require.Error(t, err)

	_, err = parseByte("128", "PIN")
	require.Error(t, err)
	pin, err := parseByte("0x0D", "PIN")
	require.NoError(t, err)
	require.Equal(t, byte(13), pin)
}
