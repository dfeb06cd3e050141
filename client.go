package influxline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// fallbackRetentionPolicy is used when neither the write call nor the
// configuration names a retention policy.
const fallbackRetentionPolicy = "default"

// Client is the public entry point for writing points, either
// synchronously or through the internal batching pipeline.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - At most one flush is in flight at any time.
type Client struct {
	transport    Transport
	logger       *slog.Logger
	writeTimeout time.Duration

	mu           sync.RWMutex
	defaultRP    string
	batchEnabled bool
	processor    *batchProcessor
	onError      func(err error)

	// Diagnostics only; never read by control logic.
	writeCount     atomic.Int64
	unbatchedCount atomic.Int64
	batchedCount   atomic.Int64
}

// Connect builds a client from the configuration and verifies
// connectivity with a ping.
//
// Parameters:
//   - ctx: Context for cancellation (used for the connectivity check)
//   - cfg: Client configuration, typically from LoadConfig
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the configuration is invalid or the server is unreachable
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := newClient(newHTTPTransport(cfg), cfg)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if _, _, err := c.transport.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// newClient wires a client around an arbitrary transport. Tests use
// this to substitute a recording transport.
func newClient(t Transport, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rp := cfg.RetentionPolicy
	if rp == "" {
		rp = fallbackRetentionPolicy
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Client{
		transport:    t,
		logger:       logger.With("component", "influxline"),
		writeTimeout: timeout,
		defaultRP:    rp,
	}
}

// Write accepts a point for eventual persistence under the given
// database. An empty retention policy is substituted with the client
// default.
//
// When batching is disabled the point is sent synchronously as a
// single-point batch and any transport error is returned. When batching
// is enabled the point is staged without network I/O, unless this write
// crosses the action threshold, in which case the flush runs on this
// goroutine and its error is returned.
func (c *Client) Write(database, retentionPolicy string, p *Point) error {
	if p == nil {
		return fmt.Errorf("%w: point must not be nil", ErrInvalidConfig)
	}

	c.writeCount.Add(1)

	c.mu.RLock()
	rp := retentionPolicy
	if rp == "" {
		rp = c.defaultRP
	}
	if c.batchEnabled && c.processor != nil {
		// Hold the read lock across put so a concurrent DisableBatch
		// cannot run its final flush between routing and enqueue.
		err := c.processor.put(batchEntry{point: p, database: database, retentionPolicy: rp})
		c.mu.RUnlock()
		return err
	}
	c.mu.RUnlock()

	bp := NewBatchPoints(database, rp)
	bp.AddPoint(p)
	err := c.WriteBatch(bp)
	c.unbatchedCount.Add(1)
	return err
}

// WriteBatch sends a caller-constructed batch synchronously, blocking
// for the duration of one network round trip. The batched-points
// counter is incremented by the batch's point count.
func (c *Client) WriteBatch(bp *BatchPoints) error {
	if bp == nil || len(bp.points) == 0 {
		return nil
	}

	c.batchedCount.Add(int64(len(bp.points)))

	body, err := bp.LineProtocol()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	return c.transport.WriteLineProtocol(ctx,
		bp.database, bp.retentionPolicy,
		precisionToken(bp.precision), string(bp.consistency),
		body)
}

// EnableBatch turns on write batching: points handed to Write are
// staged and flushed together once actions points have accumulated or
// flushInterval has elapsed, whichever comes first.
//
// Enabling while already enabled is a no-op.
func (c *Client) EnableBatch(actions int, flushInterval time.Duration) error {
	if actions <= 0 {
		return fmt.Errorf("%w: actions must be positive", ErrInvalidConfig)
	}
	if flushInterval <= 0 {
		return fmt.Errorf("%w: flush interval must be positive", ErrInvalidConfig)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batchEnabled {
		return nil
	}

	c.processor = newBatchProcessor(actions, flushInterval, c.WriteBatch, c.handleFlushError)
	c.processor.start()
	c.batchEnabled = true

	return nil
}

// DisableBatch turns off write batching. It stops the flush timer,
// performs one final blocking flush of whatever remains staged, and
// returns that flush's error, if any. No entries are lost: the call
// waits for any in-flight flush before draining.
//
// Disabling while already disabled is a no-op.
func (c *Client) DisableBatch() error {
	c.mu.Lock()
	if !c.batchEnabled {
		c.mu.Unlock()
		return nil
	}
	c.batchEnabled = false
	proc := c.processor
	c.processor = nil
	c.mu.Unlock()

	proc.stop()
	err := proc.flush()

	c.logger.Info("batching disabled",
		"total_writes", c.writeCount.Load(),
		"unbatched_writes", c.unbatchedCount.Load(),
		"batched_points", c.batchedCount.Load())

	return err
}

// BatchEnabled reports whether write batching is currently enabled.
func (c *Client) BatchEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batchEnabled
}

// WithDefaultRetentionPolicy sets the retention policy substituted when
// Write is called without one. The policy must not be empty.
func (c *Client) WithDefaultRetentionPolicy(retentionPolicy string) error {
	if retentionPolicy == "" {
		return fmt.Errorf("%w: retention policy must not be empty", ErrInvalidConfig)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultRP = retentionPolicy

	return nil
}

// SetOnError sets a callback invoked when a timer-driven flush fails.
//
// Count-triggered and synchronous writes return their errors directly;
// only failures on the flush timer goroutine are delivered here.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// handleFlushError logs a timer-driven flush failure and forwards it to
// the onError callback. The flush scheduler keeps running regardless.
func (c *Client) handleFlushError(err error) {
	c.logger.Error("scheduled flush failed", "error", err)

	c.mu.RLock()
	callback := c.onError
	c.mu.RUnlock()

	if callback != nil {
		callback(err)
	}
}

// Ping checks connectivity and reports the server version and
// round-trip time.
func (c *Client) Ping(ctx context.Context) (*Pong, error) {
	version, rtt, err := c.transport.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return &Pong{Version: version, ResponseTime: rtt}, nil
}

// Close shuts the client down, flushing anything still staged. The
// client must not be used afterwards.
func (c *Client) Close() error {
	return c.DisableBatch()
}

// WriteCount returns the total number of Write calls accepted.
func (c *Client) WriteCount() int64 {
	return c.writeCount.Load()
}

// UnbatchedCount returns the number of writes sent directly, outside
// the batching pipeline.
func (c *Client) UnbatchedCount() int64 {
	return c.unbatchedCount.Load()
}

// BatchedCount returns the number of points sent through WriteBatch,
// including single-point batches from unbatched writes.
func (c *Client) BatchedCount() int64 {
	return c.batchedCount.Load()
}
