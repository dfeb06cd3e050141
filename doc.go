// Package influxline is a buffered write client for InfluxDB's HTTP
// line-protocol API (/write, /query, /ping).
//
// It accepts individual points from any number of goroutines, coalesces
// them into batches, and flushes each batch as a single HTTP POST of
// newline-delimited line protocol. A flush happens when either the
// configured point count is reached or the flush interval elapses,
// whichever comes first.
//
// # Usage
//
//	cfg := influxline.DefaultConfig()
//	cfg.URL = "http://localhost:8086"
//
//	client, err := influxline.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.EnableBatch(2000, 100*time.Millisecond)
//
//	p := influxline.NewPoint("cpu",
//	    map[string]string{"host": "server01"},
//	    map[string]interface{}{"value": 0.64},
//	    time.Now())
//	client.Write("mydb", "", p)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Writes are batched internally and flushed on size threshold or timer;
// at most one flush is in flight at any time.
//
// # Error Handling
//
// Synchronous writes return errors directly. When batching is enabled,
// a write that crosses the size threshold runs the flush on the calling
// goroutine and returns its error; timer-driven flush errors are
// delivered via the SetOnError callback and logged. Points handed to a
// flush whose network send fails are dropped, not re-enqueued: delivery
// is at most once, and retry policy belongs to the caller.
//
// # Performance
//
// Enqueueing a point is an O(1) append under a mutex. A flush drains the
// pending queue in one swap, groups entries by (database, retention
// policy), and issues one HTTP POST per group.
package influxline
