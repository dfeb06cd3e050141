package influxline

import (
	"fmt"
	"sort"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// Point is a single timestamped measurement with tags and fields.
//
// A Point is immutable once constructed. It implements the line-protocol
// Metric interface so it can be handed straight to the wire encoder.
type Point struct {
	name   string
	tags   []*protocol.Tag
	fields []*protocol.Field
	ts     time.Time
}

// NewPoint creates a point from a measurement name, tags, fields, and
// timestamp.
//
// Tags and fields are copied and sorted by key so the serialized output
// is deterministic. Field values are normalised to the types the line
// protocol supports (int64, uint64, float64, bool, string); anything
// else is rendered with fmt.Sprint.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//   - t: The timestamp for this data point
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, t time.Time) *Point {
	p := &Point{
		name:   measurement,
		tags:   make([]*protocol.Tag, 0, len(tags)),
		fields: make([]*protocol.Field, 0, len(fields)),
		ts:     t,
	}

	for k, v := range tags {
		p.tags = append(p.tags, &protocol.Tag{Key: k, Value: v})
	}
	sort.Slice(p.tags, func(i, j int) bool { return p.tags[i].Key < p.tags[j].Key })

	for k, v := range fields {
		p.fields = append(p.fields, &protocol.Field{Key: k, Value: convertField(v)})
	}
	sort.Slice(p.fields, func(i, j int) bool { return p.fields[i].Key < p.fields[j].Key })

	return p
}

// Name returns the measurement name.
func (p *Point) Name() string {
	return p.name
}

// Time returns the point's timestamp.
func (p *Point) Time() time.Time {
	return p.ts
}

// TagList returns the point's tags, sorted by key.
func (p *Point) TagList() []*protocol.Tag {
	return p.tags
}

// FieldList returns the point's fields, sorted by key.
func (p *Point) FieldList() []*protocol.Field {
	return p.fields
}

// convertField widens a field value to one of the types the line
// protocol encoder accepts.
func convertField(v interface{}) interface{} {
	switch val := v.(type) {
	case bool, int64, uint64, float64, string, []byte:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return uint64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// precisionToken maps a timestamp precision to the wire-protocol token
// accepted by the /write endpoint.
//
// Supported precisions: nanosecond, microsecond, millisecond, second,
// minute, hour. Anything else falls back to nanosecond.
func precisionToken(d time.Duration) string {
	switch d {
	case time.Microsecond:
		return "u"
	case time.Millisecond:
		return "ms"
	case time.Second:
		return "s"
	case time.Minute:
		return "m"
	case time.Hour:
		return "h"
	default:
		return "ns"
	}
}
