package trace

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

const (
	keyEvent  = "event"
	keyTime   = "time"
	keySource = "source"
)

// ErrNoEvent indicates a packet without event name.
var ErrNoEvent = errors.New("trace packet has no event")

// Event is a decoded trace packet.
type Event struct {
	Name   string
	Source string
	Time   time.Time
	// Fields holds the remaining values: float64, string, bool or
	// []interface{} of those.
	Fields map[string]interface{}
}

// Decode decodes a trace packet.
func Decode(pkt []byte) (*Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(pkt, &s); err != nil {
		return nil, err
	}
	ev := &Event{Fields: make(map[string]interface{})}
	for key, val := range s.Fields {
		switch key {
		case keyEvent:
			ev.Name = val.GetStringValue()
		case keySource:
			ev.Source = val.GetStringValue()
		case keyTime:
			if t, err := time.Parse(time.RFC3339Nano, val.GetStringValue()); err == nil {
				ev.Time = t
			}
		default:
			ev.Fields[key] = fromValue(val)
		}
	}
	if ev.Name == "" {
		return nil, ErrNoEvent
	}
	return ev, nil
}

// Int returns a numeric field as int.
func (e *Event) Int(key string) (int, bool) {
	v, ok := e.Fields[key].(float64)
	return int(v), ok
}

// String formats the event as "source event key=value ...".
func (e *Event) String() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Name)
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteByte(' ')
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(e.Fields[key]))
	}
	return sb.String()
}

func fromValue(v *structpb.Value) interface{} {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return k.BoolValue
	case *structpb.Value_ListValue:
		items := make([]interface{}, len(k.ListValue.GetValues()))
		for n, item := range k.ListValue.GetValues() {
			items[n] = fromValue(item)
		}
		return items
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return strconv.Quote(val)
	case []interface{}:
		items := make([]string, len(val))
		for n, item := range val {
			items[n] = formatValue(item)
		}
		return "[" + strings.Join(items, " ") + "]"
	}
	return fmt.Sprint(v)
}
