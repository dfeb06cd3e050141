package influxline

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Line Protocol Encoding Tests
// =============================================================================

func TestBatchPoints_LineProtocol(t *testing.T) {
	p := NewPoint("cpu",
		map[string]string{"host": "server01", "region": "us west"},
		map[string]interface{}{
			"value":  0.64,
			"count":  int64(3),
			"active": true,
			"note":   "ok",
		},
		time.Unix(0, 1465839830100400200))

	bp := NewBatchPoints("mydb", "default")
	bp.AddPoint(p)

	got, err := bp.LineProtocol()
	if err != nil {
		t.Fatalf("LineProtocol() error = %v", err)
	}

	want := `cpu,host=server01,region=us\ west active=true,count=3i,note="ok",value=0.64 1465839830100400200` + "\n"
	if got != want {
		t.Errorf("LineProtocol() =\n%q\nwant\n%q", got, want)
	}
}

func TestBatchPoints_LineProtocolNoTags(t *testing.T) {
	p := NewPoint("mem", nil,
		map[string]interface{}{"used": int64(42)},
		time.Unix(1, 0))

	bp := NewBatchPoints("mydb", "default")
	bp.AddPoint(p)

	got, err := bp.LineProtocol()
	if err != nil {
		t.Fatalf("LineProtocol() error = %v", err)
	}

	want := "mem used=42i 1000000000\n"
	if got != want {
		t.Errorf("LineProtocol() = %q, want %q", got, want)
	}
}

func TestBatchPoints_LineProtocolMultiplePoints(t *testing.T) {
	bp := NewBatchPoints("mydb", "default")
	for i := 0; i < 3; i++ {
		bp.AddPoint(NewPoint("cpu", nil,
			map[string]interface{}{"value": int64(i)},
			time.Unix(0, int64(i+1))))
	}

	got, err := bp.LineProtocol()
	if err != nil {
		t.Fatalf("LineProtocol() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("LineProtocol() produced %d lines, want 3", len(lines))
	}
	// Insertion order is preserved.
	for i, line := range lines {
		if !strings.HasSuffix(line, " "+string(rune('1'+i))) {
			t.Errorf("line %d = %q, timestamps out of order", i, line)
		}
	}
}

func TestBatchPoints_Deterministic(t *testing.T) {
	build := func() *BatchPoints {
		bp := NewBatchPoints("mydb", "default")
		bp.AddPoint(NewPoint("cpu",
			map[string]string{"b": "2", "a": "1", "c": "3"},
			map[string]interface{}{"z": int64(1), "y": int64(2), "x": int64(3)},
			time.Unix(0, 42)))
		return bp
	}

	first, err := build().LineProtocol()
	if err != nil {
		t.Fatalf("LineProtocol() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := build().LineProtocol()
		if err != nil {
			t.Fatalf("LineProtocol() error = %v", err)
		}
		if got != first {
			t.Fatalf("LineProtocol() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestConvertField(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"int", int(7), int64(7)},
		{"int32", int32(7), int64(7)},
		{"uint", uint(7), uint64(7)},
		{"float32", float32(2.5), float64(2.5)},
		{"float64", 2.5, 2.5},
		{"bool", true, true},
		{"string", "s", "s"},
		{"duration", 3 * time.Second, "3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertField(tt.in); got != tt.want {
				t.Errorf("convertField(%v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

// =============================================================================
// Defaults and Precision Tests
// =============================================================================

func TestNewBatchPoints_Defaults(t *testing.T) {
	bp := NewBatchPoints("mydb", "one_week")

	if bp.Database() != "mydb" {
		t.Errorf("Database() = %q", bp.Database())
	}
	if bp.RetentionPolicy() != "one_week" {
		t.Errorf("RetentionPolicy() = %q", bp.RetentionPolicy())
	}
	if bp.Consistency() != ConsistencyOne {
		t.Errorf("Consistency() = %q, want %q", bp.Consistency(), ConsistencyOne)
	}
	if bp.Precision() != time.Nanosecond {
		t.Errorf("Precision() = %v, want %v", bp.Precision(), time.Nanosecond)
	}
	if len(bp.Points()) != 0 {
		t.Errorf("Points() = %d entries, want 0", len(bp.Points()))
	}
}

func TestPrecisionToken(t *testing.T) {
	tests := []struct {
		precision time.Duration
		want      string
	}{
		{time.Nanosecond, "ns"},
		{time.Microsecond, "u"},
		{time.Millisecond, "ms"},
		{time.Second, "s"},
		{time.Minute, "m"},
		{time.Hour, "h"},
		{0, "ns"},
		{42 * time.Millisecond, "ns"},
	}

	for _, tt := range tests {
		if got := precisionToken(tt.precision); got != tt.want {
			t.Errorf("precisionToken(%v) = %q, want %q", tt.precision, got, tt.want)
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkLineProtocol_SinglePoint(b *testing.B) {
	bp := NewBatchPoints("mydb", "default")
	bp.AddPoint(NewPoint("cpu",
		map[string]string{"host": "server01", "region": "uswest"},
		map[string]interface{}{"value": 0.64},
		time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bp.LineProtocol(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLineProtocol_LargeBatch(b *testing.B) {
	bp := NewBatchPoints("mydb", "default")
	for i := 0; i < 1000; i++ {
		bp.AddPoint(NewPoint("cpu",
			map[string]string{"host": "server01"},
			map[string]interface{}{"value": float64(i)},
			time.Date(2026, 2, 5, 12, 0, 0, i, time.UTC)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bp.LineProtocol(); err != nil {
			b.Fatal(err)
		}
	}
}
