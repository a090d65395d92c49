package syncengine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	fail  atomic.Bool
	calls atomic.Int64
}

func (p *stubPinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestNetworkMonitor_StartsOnline(t *testing.T) {
	m := NewNetworkMonitor(nil, nil)
	assert.True(t, m.Online())
}

func TestNetworkMonitor_ReconnectHandlersRunOnlyOnTransition(t *testing.T) {
	m := NewNetworkMonitor(nil, nil)
	var fired atomic.Int64
	m.OnReconnect(func(context.Context) { fired.Add(1) })
	ctx := context.Background()

	m.SetOnline(ctx, true)
	m.Stop()
	assert.Zero(t, fired.Load(), "already online")

	m.SetOnline(ctx, false)
	m.Stop()
	assert.False(t, m.Online())
	assert.Zero(t, fired.Load(), "going offline fires nothing")

	m.SetOnline(ctx, true)
	m.Stop()
	assert.Equal(t, int64(1), fired.Load())

	m.SetOnline(ctx, true)
	m.Stop()
	assert.Equal(t, int64(1), fired.Load())
}

func TestNetworkMonitor_PingLoopTracksReachability(t *testing.T) {
	p := &stubPinger{}
	p.fail.Store(true)
	m := NewNetworkMonitor(p, nil)

	var fired atomic.Int64
	m.OnReconnect(func(context.Context) { fired.Add(1) })

	m.Start(context.Background(), 10*time.Millisecond)
	defer m.Stop()

	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)

	p.fail.Store(false)
	require.Eventually(t, m.Online, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNetworkMonitor_StopEndsProbing(t *testing.T) {
	p := &stubPinger{}
	m := NewNetworkMonitor(p, nil)

	m.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
	m.Stop()

	calls := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, p.calls.Load())
}

func TestNetworkMonitor_CancelledPingKeepsState(t *testing.T) {
	p := &stubPinger{}
	p.fail.Store(true)
	m := NewNetworkMonitor(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.Check(ctx)
	assert.True(t, m.Online())
}

func TestNetworkMonitor_NoHandlersStartWhileStopping(t *testing.T) {
	m := NewNetworkMonitor(nil, nil)
	release := make(chan struct{})
	var fired atomic.Int64
	m.OnReconnect(func(context.Context) {
		fired.Add(1)
		<-release
	})
	ctx := context.Background()

	m.SetOnline(ctx, false)
	m.SetOnline(ctx, true)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.stopping
	}, time.Second, time.Millisecond)

	m.SetOnline(ctx, false)
	m.SetOnline(ctx, true)
	assert.True(t, m.Online(), "state still tracked")

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int64(1), fired.Load())

	m.SetOnline(ctx, false)
	m.SetOnline(ctx, true)
	m.Stop()
	assert.Equal(t, int64(2), fired.Load(), "handlers fire again once Stop returned")
}
