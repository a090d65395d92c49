package syncengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-study-sync/models"
)

func TestDrain_ConfirmsInEnqueueOrder(t *testing.T) {
	h := newHarness(t, nil)
	h.network.online.Store(false)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := h.ctrl.Create(ctx, &models.Deck{Title: title})
		require.NoError(t, err)
	}
	require.Len(t, h.ctrl.Pending(), 3)

	h.network.online.Store(true)
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, []string{"first", "second", "third"}, h.remote.inserted)
	assert.Empty(t, h.ctrl.Pending())
	for _, item := range h.ctrl.Read() {
		assert.False(t, models.IsTempID(item.ID))
	}
	assert.Equal(t, 1, h.remote.selectCalls, "one refresh after confirmations")
}

func TestDrain_RemapsTemporaryIDsForLaterOperations(t *testing.T) {
	h := newHarness(t, nil)
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Draft"})
	require.NoError(t, err)
	tempID := h.ctrl.Read()[0].ID

	_, err = h.ctrl.Update(ctx, tempID, models.Patch{"title": "Final"})
	require.NoError(t, err)

	pending := h.ctrl.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, tempID, pending[1].EntityID)

	h.network.online.Store(true)
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, []string{"Final"}, h.remote.titles())
	items := h.ctrl.Read()
	require.Len(t, items, 1)
	assert.Equal(t, "srv-1", items[0].ID)
	assert.Equal(t, "Final", items[0].Title)
	assert.Empty(t, h.ctrl.Pending())
}

func TestDrain_SkippedWhileOffline(t *testing.T) {
	h := newHarness(t, nil)
	h.network.online.Store(false)

	_, err := h.ctrl.Create(context.Background(), &models.Deck{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, h.ctrl.Drain(context.Background()))
	assert.Zero(t, h.remote.insertCalls)
	assert.Len(t, h.ctrl.Pending(), 1)
}

func TestDrain_DropsAfterFourthFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Doomed"})
	require.NoError(t, err)

	h.network.online.Store(true)
	h.remote.set(func(r *fakeRemote) { r.failInsert = errRemoteDown })

	for attempt := 1; attempt <= 3; attempt++ {
		require.NoError(t, h.ctrl.Drain(ctx))
		pending := h.ctrl.Pending()
		require.Len(t, pending, 1, "attempt %d", attempt)
		assert.Equal(t, attempt, pending[0].RetryCount)
		assert.Len(t, h.ctrl.Read(), 1)
	}

	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, 4, h.remote.insertCalls)
	assert.Empty(t, h.ctrl.Pending())
	assert.Empty(t, h.ctrl.Read(), "dropped create removes the optimistic record")
	assert.Zero(t, h.queue.len())

	last := h.notifier.last()
	assert.Equal(t, models.NotifyError, last.Level)
	assert.Contains(t, last.Message, string(models.OperationCreate))
}

func TestDrain_DroppedCreateTakesDependentsWithIt(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.MaxRetries = 1 })
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Doomed"})
	require.NoError(t, err)
	tempID := h.ctrl.Read()[0].ID
	_, err = h.ctrl.Update(ctx, tempID, models.Patch{"title": "Still doomed"})
	require.NoError(t, err)

	h.network.online.Store(true)
	h.remote.set(func(r *fakeRemote) { r.failInsert = errRemoteDown })

	require.NoError(t, h.ctrl.Drain(ctx))
	require.Len(t, h.ctrl.Pending(), 2)
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Empty(t, h.ctrl.Pending())
	assert.Zero(t, h.remote.updateCalls)
}

func TestDrain_FailureHoldsBackSameEntityOnly(t *testing.T) {
	h := newHarness(t, nil)
	now := h.clock.Now()
	h.remote.seed(deck("a", "A", now), deck("b", "B", now))
	require.NoError(t, h.ctrl.Initialize(context.Background()))
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Update(ctx, "a", models.Patch{"title": "A1"})
	require.NoError(t, err)
	_, err = h.ctrl.Update(ctx, "b", models.Patch{"title": "B1"})
	require.NoError(t, err)
	_, err = h.ctrl.Remove(ctx, "a")
	require.NoError(t, err)
	require.Len(t, h.ctrl.Pending(), 3)

	h.network.online.Store(true)
	h.remote.set(func(r *fakeRemote) { r.failUpdate = errRemoteDown })
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, 2, h.remote.updateCalls)
	assert.Zero(t, h.remote.deleteCalls, "delete of a waits behind its failed update")

	pending := h.ctrl.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, models.OperationUpdate, pending[0].Kind)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, models.OperationDelete, pending[2].Kind)
	assert.Zero(t, pending[2].RetryCount)
}

func TestDrain_WaitsForBackoff(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.BackoffBase = time.Minute
		o.BackoffCap = 10 * time.Minute
	})
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Later"})
	require.NoError(t, err)

	h.network.online.Store(true)
	h.remote.set(func(r *fakeRemote) { r.failInsert = errRemoteDown })

	require.NoError(t, h.ctrl.Drain(ctx))
	pending := h.ctrl.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, h.clock.Now().Add(time.Minute), pending[0].NextAttemptAt)

	require.NoError(t, h.ctrl.Drain(ctx))
	assert.Equal(t, 1, h.remote.insertCalls, "not due yet")

	h.clock.Advance(time.Minute)
	h.remote.set(func(r *fakeRemote) { r.failInsert = nil })
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, 2, h.remote.insertCalls)
	assert.Empty(t, h.ctrl.Pending())
}

func TestDrain_DropsPermanentFailuresWhenEnabled(t *testing.T) {
	errRejected := errors.New("rejected")
	h := newHarness(t, func(o *Options) {
		o.DropPermanentFailures = true
		o.IsPermanent = func(err error) bool { return errors.Is(err, errRejected) }
	})
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Invalid"})
	require.NoError(t, err)

	h.network.online.Store(true)
	h.remote.set(func(r *fakeRemote) { r.failInsert = errRejected })

	require.NoError(t, h.ctrl.Drain(ctx))
	assert.Equal(t, 1, h.remote.insertCalls)
	assert.Empty(t, h.ctrl.Pending())
}

func TestSync_DrainsThenRefreshes(t *testing.T) {
	h := newHarness(t, nil)
	h.network.online.Store(false)
	ctx := context.Background()

	_, err := h.ctrl.Create(ctx, &models.Deck{Title: "Queued"})
	require.NoError(t, err)
	h.remote.seed(deck("other", "From another device", h.clock.Now().Add(-time.Minute)))

	h.network.online.Store(true)
	require.NoError(t, h.ctrl.Sync(ctx))

	assert.ElementsMatch(t, []string{"Queued", "From another device"}, titles(h.ctrl.Read()))
	assert.Empty(t, h.ctrl.Pending())
	assert.Equal(t, models.PhaseIdle, h.ctrl.Status().Phase)
}

func TestController_OnlineUpdateWaitsBehindQueuedUpdate(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.seed(deck("d1", "orig", h.clock.Now()))
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))

	h.remote.set(func(r *fakeRemote) { r.failUpdate = errRemoteDown })
	_, err := h.ctrl.Update(ctx, "d1", models.Patch{"title": "older"})
	require.NoError(t, err)
	require.Len(t, h.ctrl.Pending(), 1)

	h.remote.set(func(r *fakeRemote) { r.failUpdate = nil })
	updated, err := h.ctrl.Update(ctx, "d1", models.Patch{"title": "newer"})
	require.NoError(t, err)
	assert.Nil(t, updated, "queued behind the earlier update")
	assert.Equal(t, []string{"orig"}, h.remote.titles())
	assert.Equal(t, []string{"newer"}, titles(h.ctrl.Read()))

	pending := h.ctrl.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "d1", pending[1].EntityID)

	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, []string{"newer"}, h.remote.titles())
	assert.Equal(t, []string{"newer"}, titles(h.ctrl.Read()))
	assert.Empty(t, h.ctrl.Pending())
}

func TestController_OnlineRemoveWaitsBehindQueuedUpdate(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.seed(deck("d1", "orig", h.clock.Now()))
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))

	h.remote.set(func(r *fakeRemote) { r.failUpdate = errRemoteDown })
	_, err := h.ctrl.Update(ctx, "d1", models.Patch{"title": "edited"})
	require.NoError(t, err)

	h.remote.set(func(r *fakeRemote) { r.failUpdate = nil })
	ok, err := h.ctrl.Remove(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok, "not confirmed yet")
	assert.Zero(t, h.remote.deleteCalls)
	assert.Empty(t, h.ctrl.Read())

	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, 2, h.remote.updateCalls)
	assert.Equal(t, 1, h.remote.deleteCalls)
	assert.Empty(t, h.remote.titles())
	assert.Empty(t, h.ctrl.Read())
	assert.Empty(t, h.ctrl.Pending())
	assert.NotContains(t, h.notifier.levels(), models.NotifyError)
}

func TestDrain_UpdateThenDeleteLeavesRecordGone(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.seed(deck("1", "Deck", h.clock.Now()))
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))
	h.network.online.Store(false)

	_, err := h.ctrl.Update(ctx, "1", models.Patch{"title": "Renamed"})
	require.NoError(t, err)
	_, err = h.ctrl.Remove(ctx, "1")
	require.NoError(t, err)

	pending := h.ctrl.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, models.OperationUpdate, pending[0].Kind)
	assert.Equal(t, models.OperationDelete, pending[1].Kind)

	h.network.online.Store(true)
	require.NoError(t, h.ctrl.Drain(ctx))

	assert.Equal(t, 1, h.remote.updateCalls)
	assert.Equal(t, 1, h.remote.deleteCalls)
	assert.Empty(t, h.remote.titles())
	assert.Empty(t, h.ctrl.Read(), "refresh after drain does not bring it back")
	assert.Empty(t, h.ctrl.Pending())
}
