package syncengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/models"
)

// RealtimeListener turns remote change events into full refreshes. Any
// event of any kind triggers one refresh; events arriving while a refresh
// runs collapse into a single follow-up refresh.
type RealtimeListener struct {
	collection string
	source     ChangeSource
	refresh    func(ctx context.Context) error
	log        *logger.Logger

	mu     sync.Mutex
	sub    Subscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRealtimeListener wires source to refresh for one collection.
func NewRealtimeListener(collection string, source ChangeSource, refresh func(ctx context.Context) error, log *logger.Logger) *RealtimeListener {
	if log == nil {
		log = logger.Nop()
	}
	return &RealtimeListener{
		collection: collection,
		source:     source,
		refresh:    refresh,
		log:        log,
	}
}

// Start subscribes to the change feed. A started listener ignores further
// calls, so there is at most one subscription per listener.
func (l *RealtimeListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sub != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	trigger := make(chan struct{}, 1)

	sub, err := l.source.Subscribe(loopCtx, func(ev models.ChangeEvent) {
		if ev.Collection != "" && ev.Collection != l.collection {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to %s: %w", l.collection, err)
	}

	l.sub = sub
	l.cancel = cancel

	l.wg.Add(1)
	go l.loop(loopCtx, sub, trigger)

	return nil
}

func (l *RealtimeListener) loop(ctx context.Context, sub Subscription, trigger <-chan struct{}) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			l.forget(sub)
			return
		case <-trigger:
			if err := l.refresh(ctx); err != nil && ctx.Err() == nil {
				l.log.Warn().Err(err).
					Str("func", "RealtimeListener.loop").
					Str("collection", l.collection).
					Msg("refresh after change event failed")
			}
		}
	}
}

// forget drops a subscription that ended on its own so the next Start
// subscribes again.
func (l *RealtimeListener) forget(sub Subscription) {
	l.mu.Lock()
	if l.sub != sub {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	l.sub, l.cancel = nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.log.Warn().Str("func", "RealtimeListener.forget").Str("collection", l.collection).
		Msg("change feed ended, listener will resubscribe on next start")
}

// Stop closes the subscription and waits for a running refresh to return.
func (l *RealtimeListener) Stop() {
	l.mu.Lock()
	sub, cancel := l.sub, l.cancel
	l.sub, l.cancel = nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		if err := sub.Close(); err != nil {
			l.log.Debug().Err(err).Str("func", "RealtimeListener.Stop").Msg("close subscription")
		}
	}
	l.wg.Wait()
}
