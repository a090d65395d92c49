// Package workers groups the background loops of the client so they can be
// started and stopped as one unit.
package workers

import "context"

// Worker is a background loop. Start must not block; Stop must wait for the
// loop to exit and be safe to call more than once.
//
// Example implementation:
//
//	type MyWorker struct{ cancel context.CancelFunc }
//
//	func (w *MyWorker) Start(ctx context.Context) { ctx, w.cancel = context.WithCancel(ctx); go loop(ctx) }
//	func (w *MyWorker) Stop()                     { w.cancel() }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
