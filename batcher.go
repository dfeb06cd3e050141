package influxline

import (
	"errors"
	"sync"
	"time"
)

// batchEntry wraps a point with the destination captured at submission
// time. Immutable once created.
type batchEntry struct {
	point           *Point
	database        string
	retentionPolicy string
}

// batchQueue is an unbounded, insertion-order-preserving staging area
// for pending entries. put and drain are individually thread-safe: a
// put lands fully before or fully after a given drain, never partially.
type batchQueue struct {
	mu      sync.Mutex
	entries []batchEntry
}

// put appends an entry and returns the queue length after the append.
func (q *batchQueue) put(e batchEntry) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	return len(q.entries)
}

// drain removes and returns all queued entries as a snapshot, leaving
// the queue empty for subsequent producers.
func (q *batchQueue) drain() []batchEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot := q.entries
	q.entries = nil
	return snapshot
}

func (q *batchQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// batchProcessor drives the two flush triggers and executes flushes.
//
// The count trigger fires synchronously inside put when the queue
// reaches the action threshold. The time trigger fires on a ticker
// goroutine every interval, regardless of queue size. Both funnel into
// flush, which serializes executions through flushMu: a trigger that
// arrives while a flush is in progress waits for it to complete and
// then drains again (an empty re-drain is a no-op).
type batchProcessor struct {
	queue    *batchQueue
	actions  int
	interval time.Duration

	// write sends one grouped batch synchronously; onError receives
	// failures from timer-driven flushes.
	write   func(*BatchPoints) error
	onError func(error)

	flushMu sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup
}

func newBatchProcessor(actions int, interval time.Duration, write func(*BatchPoints) error, onError func(error)) *batchProcessor {
	return &batchProcessor{
		queue:    &batchQueue{},
		actions:  actions,
		interval: interval,
		write:    write,
		onError:  onError,
	}
}

// start launches the periodic flush goroutine.
func (p *batchProcessor) start() {
	p.ticker = time.NewTicker(p.interval)
	p.done = make(chan struct{})
	p.wg.Add(1)
	go p.flushLoop()
}

// flushLoop flushes the queue on every tick until done is signalled.
// A failed flush is reported and the loop keeps ticking.
func (p *batchProcessor) flushLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ticker.C:
			if err := p.flush(); err != nil && p.onError != nil {
				p.onError(err)
			}
		case <-p.done:
			return
		}
	}
}

// put stages an entry for the next flush. If the append crosses the
// action threshold, the flush runs synchronously on the calling
// goroutine and its error is returned to the caller.
func (p *batchProcessor) put(e batchEntry) error {
	if p.queue.put(e) >= p.actions {
		return p.flush()
	}
	return nil
}

// flush drains the queue, groups the snapshot by (database, retention
// policy) in first-seen order, and sends one batch per group. At most
// one flush executes at a time. A group's failure does not stop the
// remaining groups; errors are joined. Entries in a failed group are
// dropped, not re-enqueued: delivery is at most once.
func (p *batchProcessor) flush() error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	snapshot := p.queue.drain()
	if len(snapshot) == 0 {
		return nil
	}

	groups := make(map[string]*BatchPoints)
	order := make([]string, 0, 1)
	for _, e := range snapshot {
		key := e.database + "\x00" + e.retentionPolicy
		bp, ok := groups[key]
		if !ok {
			bp = NewBatchPoints(e.database, e.retentionPolicy)
			groups[key] = bp
			order = append(order, key)
		}
		bp.AddPoint(e.point)
	}

	var errs []error
	for _, key := range order {
		if err := p.write(groups[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stop cancels the timer and waits for the flush goroutine to exit.
// Any entries still queued are left for a final explicit flush.
func (p *batchProcessor) stop() {
	p.ticker.Stop()
	close(p.done)
	p.wg.Wait()
}
