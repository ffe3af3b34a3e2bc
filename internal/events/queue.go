package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/salescrm/order-service/internal/obs"
)

// Queue is a buffered event queue with a background broker that moves
// backlog items to the output channel the workers consume.
type Queue struct {
	mu           sync.Mutex
	backlog      []Event
	notify       chan struct{}
	out          chan Event
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
}

// NewQueue creates a Queue with a buffered output channel.
func NewQueue(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan Event, outBuffer),
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			if sz := q.BacklogSize(); sz > highWatermark {
				obs.Logger.Warn("event backlog exceeds high watermark",
					"backlog_size", sz, "high_watermark", highWatermark)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// flushOnce drains backlog into the output buffer.
func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

// Enqueue appends an event into the backlog and notifies the broker.
// It returns false once intake has been closed for shutdown.
func (q *Queue) Enqueue(ev Event) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the output channel of events.
func (q *Queue) Out() <-chan Event { return q.out }

// BacklogSize returns the number of enqueued-but-not-yet-output events.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Depth returns backlog plus buffered output items.
func (q *Queue) Depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

// MarkPublished increases the published counter.
func (q *Queue) MarkPublished() { q.published.Add(1) }

// MarkFailed increases the failed-publish counter.
func (q *Queue) MarkFailed() { q.failed.Add(1) }

// Metrics returns counters and sizes for observability.
func (q *Queue) Metrics() (enq, pub, failed uint64, backlog, depth int) {
	enq = q.enqueued.Load()
	pub = q.published.Load()
	failed = q.failed.Load()
	backlog = q.BacklogSize()
	depth = q.Depth()
	return enq, pub, failed, backlog, depth
}

// CloseIntake disallows future enqueues.
func (q *Queue) CloseIntake() { q.shuttingDown.Store(true) }

// IsShuttingDown reports if intake has been closed.
func (q *Queue) IsShuttingDown() bool { return q.shuttingDown.Load() }
