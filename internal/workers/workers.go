package workers

import (
	"context"
	"sync"
	"time"
)

// Workers starts its workers in registration order and stops them in
// reverse order.
type Workers struct {
	mu      sync.Mutex
	workers []Worker
	running bool
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start is a no-op while the group is running.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true

	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false

	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// Running reports whether Start was called without a matching Stop.
func (w *Workers) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

type periodic struct {
	interval time.Duration
	start    func(ctx context.Context, interval time.Duration)
	stop     func()
}

// Periodic adapts a loop that takes its tick interval at start time, like
// the network monitor or the sync job.
func Periodic(interval time.Duration, start func(ctx context.Context, interval time.Duration), stop func()) Worker {
	return &periodic{interval: interval, start: start, stop: stop}
}

func (p *periodic) Start(ctx context.Context) {
	p.start(ctx, p.interval)
}

func (p *periodic) Stop() {
	p.stop()
}
