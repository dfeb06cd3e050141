package influxline

import (
	"bytes"
	"fmt"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// ConsistencyLevel is the write-acknowledgment guarantee requested from
// the remote cluster.
type ConsistencyLevel string

// Consistency levels accepted by the /write endpoint.
const (
	ConsistencyAny    ConsistencyLevel = "any"
	ConsistencyOne    ConsistencyLevel = "one"
	ConsistencyQuorum ConsistencyLevel = "quorum"
	ConsistencyAll    ConsistencyLevel = "all"
)

// BatchPoints aggregates points sharing one database, one retention
// policy, and one consistency level, and serializes them into the wire
// line-protocol representation as a single body.
//
// Not safe for concurrent use; build a BatchPoints on one goroutine and
// hand it to WriteBatch.
type BatchPoints struct {
	database        string
	retentionPolicy string
	consistency     ConsistencyLevel
	precision       time.Duration
	points          []*Point
}

// NewBatchPoints creates an empty batch for the given database and
// retention policy, with consistency "one" and nanosecond precision.
func NewBatchPoints(database, retentionPolicy string) *BatchPoints {
	return &BatchPoints{
		database:        database,
		retentionPolicy: retentionPolicy,
		consistency:     ConsistencyOne,
		precision:       time.Nanosecond,
	}
}

// AddPoint appends a point to the batch, preserving insertion order.
func (bp *BatchPoints) AddPoint(p *Point) {
	bp.points = append(bp.points, p)
}

// AddPoints appends multiple points to the batch.
func (bp *BatchPoints) AddPoints(points []*Point) {
	bp.points = append(bp.points, points...)
}

// Points returns the points in the batch, in insertion order.
func (bp *BatchPoints) Points() []*Point {
	return bp.points
}

// Database returns the destination database.
func (bp *BatchPoints) Database() string {
	return bp.database
}

// RetentionPolicy returns the destination retention policy.
func (bp *BatchPoints) RetentionPolicy() string {
	return bp.retentionPolicy
}

// Consistency returns the batch's consistency level.
func (bp *BatchPoints) Consistency() ConsistencyLevel {
	return bp.consistency
}

// SetConsistency overrides the default consistency level.
func (bp *BatchPoints) SetConsistency(level ConsistencyLevel) {
	bp.consistency = level
}

// Precision returns the batch's timestamp precision.
func (bp *BatchPoints) Precision() time.Duration {
	return bp.precision
}

// SetPrecision overrides the default nanosecond timestamp precision.
// Non-positive values are ignored.
func (bp *BatchPoints) SetPrecision(d time.Duration) {
	if d <= 0 {
		return
	}
	bp.precision = d
}

// LineProtocol serializes the batch into newline-delimited line
// protocol, one line per point, deterministic for a given set of point
// contents.
func (bp *BatchPoints) LineProtocol() (string, error) {
	var buf bytes.Buffer

	enc := protocol.NewEncoder(&buf)
	enc.SetFieldSortOrder(protocol.SortFields)
	enc.SetFieldTypeSupport(protocol.UintSupport)
	enc.SetPrecision(bp.precision)

	for _, p := range bp.points {
		if _, err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("encoding point %q: %w", p.Name(), err)
		}
	}

	return buf.String(), nil
}
