package syncengine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
)

// DefaultPingInterval is used when the monitor is started with a
// non-positive interval.
const DefaultPingInterval = 15 * time.Second

// NetworkMonitor tracks whether the remote store is reachable by pinging it
// periodically. It starts out online. Only the offline→online transition
// has an effect: it runs every handler registered with OnReconnect.
// Going offline just flips the flag.
type NetworkMonitor struct {
	pinger Pinger
	online atomic.Bool
	log    *logger.Logger

	mu       sync.Mutex
	handlers []func(ctx context.Context)
	cancel   context.CancelFunc
	stopping bool
	wg       sync.WaitGroup
}

// NewNetworkMonitor returns a monitor using pinger. pinger may be nil when
// the state is only driven through SetOnline.
func NewNetworkMonitor(pinger Pinger, log *logger.Logger) *NetworkMonitor {
	if log == nil {
		log = logger.Nop()
	}
	m := &NetworkMonitor{pinger: pinger, log: log}
	m.online.Store(true)
	return m
}

// Online reports the last known state.
func (m *NetworkMonitor) Online() bool {
	return m.online.Load()
}

// OnReconnect registers fn to run, in its own goroutine, whenever the state
// flips to online.
func (m *NetworkMonitor) OnReconnect(fn func(ctx context.Context)) {
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	m.mu.Unlock()
}

// SetOnline records the state and fires reconnect handlers on an
// offline→online transition.
func (m *NetworkMonitor) SetOnline(ctx context.Context, online bool) {
	was := m.online.Swap(online)
	if was == online {
		return
	}

	m.log.Info().Str("func", "NetworkMonitor.SetOnline").Bool("online", online).Msg("connectivity changed")
	if !online {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopping {
		m.log.Debug().Str("func", "NetworkMonitor.SetOnline").Msg("monitor stopping, reconnect handlers skipped")
		return
	}

	// wg.Add stays under mu so it cannot race with the Wait in Stop.
	for _, fn := range m.handlers {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			fn(ctx)
		}()
	}
}

// Check pings once and records the result.
func (m *NetworkMonitor) Check(ctx context.Context) bool {
	if m.pinger == nil {
		return m.Online()
	}

	err := m.pinger.Ping(ctx)
	if err != nil && ctx.Err() != nil {
		return m.Online()
	}
	if err != nil {
		m.log.Debug().Err(err).Str("func", "NetworkMonitor.Check").Msg("ping failed")
	}

	m.SetOnline(ctx, err == nil)
	return err == nil
}

// Start pings immediately and then every interval until ctx is cancelled
// or Stop is called. Calling Start again restarts the loop.
func (m *NetworkMonitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPingInterval
	}

	m.Stop()

	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		m.Check(loopCtx)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				m.Check(loopCtx)
			}
		}
	}()
}

// Stop ends the ping loop and waits for running reconnect handlers.
// Transitions to online while it waits fire no handlers.
func (m *NetworkMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.stopping = true
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	m.mu.Lock()
	m.stopping = false
	m.mu.Unlock()
}
