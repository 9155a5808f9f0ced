// Package trace records decoded Firmata commands as protobuf Struct packets.
package trace

import (
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

// PacketWriter writes an encoded packet.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketWriterFunc is func form of PacketWriter.
type PacketWriterFunc func([]byte) error

// WritePacket implements PacketWriter.
func (f PacketWriterFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}

// Event names.
const (
	EventAnalog         = "analog"
	EventDigital        = "digital"
	EventPinMode        = "pin-mode"
	EventPinValue       = "pin-value"
	EventReportAnalog   = "report-analog"
	EventReportDigital  = "report-digital"
	EventVersionRequest = "version-request"
	EventVersion        = "version"
	EventReset          = "reset"
	EventFirmware       = "firmware"
	EventString         = "string"
	EventSysex          = "sysex"
)

// Tracer is a firmata.Dispatcher writing every command to Writer before
// forwarding it to Next.
type Tracer struct {
	Next   firmata.Dispatcher
	Writer PacketWriter
	// Source is recorded in each packet, e.g. "board" or "host".
	Source string
	// Now is used for timestamps, defaults to time.Now.
	Now func() time.Time
}

// New creates a Tracer.
func New(next firmata.Dispatcher, w PacketWriter, source string) *Tracer {
	return &Tracer{Next: next, Writer: w, Source: source}
}

func (t *Tracer) record(event string, fields map[string]*structpb.Value) {
	if t.Writer == nil {
		return
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if fields == nil {
		fields = make(map[string]*structpb.Value)
	}
	fields[keyEvent] = stringValue(event)
	fields[keyTime] = stringValue(now().UTC().Format(time.RFC3339Nano))
	if t.Source != "" {
		fields[keySource] = stringValue(t.Source)
	}
	pkt, err := proto.Marshal(&structpb.Struct{Fields: fields})
	if err == nil {
		err = t.Writer.WritePacket(pkt)
	}
	if err != nil {
		glog.Errorf("trace %s: %v", event, err)
	}
}

func (t *Tracer) next() firmata.Dispatcher {
	if t.Next == nil {
		return firmata.NopDispatcher{}
	}
	return t.Next
}

// OnAnalogValue implements Dispatcher.
func (t *Tracer) OnAnalogValue(channel byte, value uint16) {
	t.record(EventAnalog, map[string]*structpb.Value{
		"channel": numberValue(float64(channel)),
		"value":   numberValue(float64(value)),
	})
	t.next().OnAnalogValue(channel, value)
}

// OnDigitalValue implements Dispatcher.
func (t *Tracer) OnDigitalValue(port byte, value uint16) {
	t.record(EventDigital, map[string]*structpb.Value{
		"port":  numberValue(float64(port)),
		"value": numberValue(float64(value)),
	})
	t.next().OnDigitalValue(port, value)
}

// OnPinModeChange implements Dispatcher.
func (t *Tracer) OnPinModeChange(pin byte, mode firmata.PinMode) {
	t.record(EventPinMode, map[string]*structpb.Value{
		"pin":  numberValue(float64(pin)),
		"mode": stringValue(mode.String()),
	})
	t.next().OnPinModeChange(pin, mode)
}

// OnDigitalPinValueSet implements Dispatcher.
func (t *Tracer) OnDigitalPinValueSet(pin byte, value byte) {
	t.record(EventPinValue, map[string]*structpb.Value{
		"pin":   numberValue(float64(pin)),
		"value": numberValue(float64(value)),
	})
	t.next().OnDigitalPinValueSet(pin, value)
}

// OnReportAnalogToggle implements Dispatcher.
func (t *Tracer) OnReportAnalogToggle(channel byte, enable bool) {
	t.record(EventReportAnalog, map[string]*structpb.Value{
		"channel": numberValue(float64(channel)),
		"enable":  boolValue(enable),
	})
	t.next().OnReportAnalogToggle(channel, enable)
}

// OnReportDigitalToggle implements Dispatcher.
func (t *Tracer) OnReportDigitalToggle(port byte, enable bool) {
	t.record(EventReportDigital, map[string]*structpb.Value{
		"port":   numberValue(float64(port)),
		"enable": boolValue(enable),
	})
	t.next().OnReportDigitalToggle(port, enable)
}

// OnReportVersionRequest implements Dispatcher.
func (t *Tracer) OnReportVersionRequest() {
	t.record(EventVersionRequest, nil)
	t.next().OnReportVersionRequest()
}

// OnVersionReport implements firmata.VersionReportHandler, forwarding to
// Next if it handles version replies.
func (t *Tracer) OnVersionReport(major, minor byte) {
	t.record(EventVersion, map[string]*structpb.Value{
		"major": numberValue(float64(major)),
		"minor": numberValue(float64(minor)),
	})
	if h, ok := t.Next.(firmata.VersionReportHandler); ok {
		h.OnVersionReport(major, minor)
	}
}

// OnSystemReset implements Dispatcher.
func (t *Tracer) OnSystemReset() {
	t.record(EventReset, nil)
	t.next().OnSystemReset()
}

// OnFirmwareReport implements Dispatcher.
func (t *Tracer) OnFirmwareReport(major, minor byte, name string) {
	t.record(EventFirmware, map[string]*structpb.Value{
		"major": numberValue(float64(major)),
		"minor": numberValue(float64(minor)),
		"name":  stringValue(name),
	})
	t.next().OnFirmwareReport(major, minor, name)
}

// OnStringMessage implements Dispatcher.
func (t *Tracer) OnStringMessage(text string) {
	t.record(EventString, map[string]*structpb.Value{
		"text": stringValue(text),
	})
	t.next().OnStringMessage(text)
}

// OnSysexCommand implements Dispatcher.
func (t *Tracer) OnSysexCommand(cmd firmata.SysexCommand, data []byte) {
	values := make([]*structpb.Value, len(data))
	for n, b := range data {
		values[n] = numberValue(float64(b))
	}
	t.record(EventSysex, map[string]*structpb.Value{
		"command": stringValue(cmd.String()),
		"data":    {Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: values}}},
	})
	t.next().OnSysexCommand(cmd, data)
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}

func boolValue(v bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}
}
