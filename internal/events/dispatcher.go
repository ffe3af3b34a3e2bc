package events

import (
	"context"
	"sync"
	"time"

	"github.com/salescrm/order-service/internal/config"
	"github.com/salescrm/order-service/internal/model"
	"github.com/salescrm/order-service/internal/obs"
)

// Dispatcher coordinates workers publishing queued events and scales the
// pool with the backlog. It satisfies the order service's Notifier.
type Dispatcher struct {
	cfg    config.Config
	q      *Queue
	pub    Publisher
	seq    Sequencer
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewDispatcher constructs a Dispatcher over the given queue and publisher.
func NewDispatcher(cfg config.Config, q *Queue, pub Publisher) *Dispatcher {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Dispatcher{cfg: cfg, q: q, pub: pub}
}

// Start begins publishing and autoscaling in the background.
func (d *Dispatcher) Start(parent context.Context) {
	d.ctx, d.cancel = context.WithCancel(parent)
	d.q.Start(d.ctx, d.cfg.QueueHighWatermark)
	d.addWorkers(d.cfg.InitialWorkerCount)
	go d.scaler()
}

// Stop cancels background routines and stops workers.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Lock()
	for _, c := range d.workerCancels {
		c()
	}
	d.workerCancels = nil
	d.mu.Unlock()
}

// scaler adjusts worker count based on backlog and configuration.
func (d *Dispatcher) scaler() {
	t := time.NewTicker(d.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-t.C:
			backlog := d.q.BacklogSize()
			wc := d.WorkerCount()
			if backlog > wc*d.cfg.ScaleUpBacklogPerWorker && wc < d.cfg.WorkerMax {
				d.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= d.cfg.ScaleDownIdleTicks && wc > d.cfg.WorkerMin {
					d.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (d *Dispatcher) addWorkers(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(d.ctx)
		d.workerCancels = append(d.workerCancels, cancel)
		go d.worker(wctx)
	}
	obs.Logger.Info("event workers scaled", "worker_count", len(d.workerCancels))
}

func (d *Dispatcher) removeWorkers(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.workerCancels) {
		n = len(d.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := d.workerCancels[len(d.workerCancels)-1]
		d.workerCancels = d.workerCancels[:len(d.workerCancels)-1]
		c()
	}
	obs.Logger.Info("event workers scaled", "worker_count", len(d.workerCancels))
}

// worker drains events from the queue and publishes them. A publish
// failure is logged and counted; the event is dropped, never retried into
// the originating request.
func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.q.Out():
			if err := d.pub.Publish(ctx, ev); err != nil {
				d.q.MarkFailed()
				obs.Logger.Error("event_publish_failed",
					"sequence", ev.Sequence, "action", string(ev.Action), "error", err)
				continue
			}
			d.q.MarkPublished()
		}
	}
}

func (d *Dispatcher) enqueue(action Action, o model.Order) {
	ev := Event{
		Sequence:   d.seq.Next(),
		Action:     action,
		Order:      o,
		OccurredAt: time.Now().UTC(),
	}
	if !d.q.Enqueue(ev) {
		obs.Logger.Warn("event_dropped_on_shutdown", "sequence", ev.Sequence, "action", string(action))
	}
}

// OrderCreated, OrderUpdated, and OrderDeleted implement the order
// service's Notifier.

func (d *Dispatcher) OrderCreated(o model.Order) { d.enqueue(ActionCreated, o) }
func (d *Dispatcher) OrderUpdated(o model.Order) { d.enqueue(ActionUpdated, o) }
func (d *Dispatcher) OrderDeleted(o model.Order) { d.enqueue(ActionDeleted, o) }

// WorkerCount returns the current number of workers.
func (d *Dispatcher) WorkerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workerCancels)
}

// BacklogSize returns pending items in the queue.
func (d *Dispatcher) BacklogSize() int { return d.q.BacklogSize() }

// CloseIntake disallows future enqueues.
func (d *Dispatcher) CloseIntake() { d.q.CloseIntake() }

// Metrics exposes the underlying queue metrics.
func (d *Dispatcher) Metrics() (enq, pub, failed uint64, backlog, depth int) {
	return d.q.Metrics()
}

// DrainUntil blocks until every enqueued event has been published (or
// failed) or ctx is done.
func (d *Dispatcher) DrainUntil(ctx context.Context) bool {
	for {
		enq, pub, failed, backlog, depth := d.q.Metrics()
		if backlog == 0 && depth == 0 && enq == pub+failed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
