package syncengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
)

var errRemoteDown = errors.New("remote unavailable")

// ── remote ────────────────────────────────────────────────────────────────────

type fakeRemote struct {
	mu     sync.Mutex
	rows   []*models.Deck
	nextID int

	failSelect error
	failInsert error
	failUpdate error
	failDelete error

	// insertGate, when set, blocks Insert until it is closed.
	insertGate chan struct{}

	selectCalls int
	insertCalls int
	updateCalls int
	deleteCalls int
	inserted    []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	subscribeCalls int
	onEvent        func(models.ChangeEvent)
}

func (r *fakeRemote) enter() func() {
	n := r.inFlight.Add(1)
	for {
		cur := r.maxInFlight.Load()
		if n <= cur || r.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	return func() { r.inFlight.Add(-1) }
}

func (r *fakeRemote) seed(decks ...*models.Deck) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, decks...)
}

func (r *fakeRemote) Select(ctx context.Context) ([]*models.Deck, error) {
	defer r.enter()()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectCalls++
	if r.failSelect != nil {
		return nil, r.failSelect
	}
	out := make([]*models.Deck, 0, len(r.rows))
	for _, row := range r.rows {
		d := *row
		out = append(out, &d)
	}
	return out, nil
}

func (r *fakeRemote) Insert(ctx context.Context, item *models.Deck) (*models.Deck, error) {
	defer r.enter()()

	r.mu.Lock()
	gate := r.insertGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCalls++
	if r.failInsert != nil {
		return nil, r.failInsert
	}
	if item.ID != "" {
		return nil, fmt.Errorf("insert with id %q", item.ID)
	}
	r.nextID++
	d := *item
	d.ID = fmt.Sprintf("srv-%d", r.nextID)
	r.rows = append(r.rows, &d)
	r.inserted = append(r.inserted, d.Title)
	out := d
	return &out, nil
}

func (r *fakeRemote) Update(ctx context.Context, id string, patch models.Patch) (*models.Deck, error) {
	defer r.enter()()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.failUpdate != nil {
		return nil, r.failUpdate
	}
	idx := slices.IndexFunc(r.rows, func(d *models.Deck) bool { return d.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("update %s: not found", id)
	}
	d := *r.rows[idx]
	if err := patch.ApplyTo(&d); err != nil {
		return nil, err
	}
	r.rows[idx] = &d
	out := d
	return &out, nil
}

func (r *fakeRemote) Delete(ctx context.Context, id string) error {
	defer r.enter()()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.failDelete != nil {
		return r.failDelete
	}
	r.rows = slices.DeleteFunc(r.rows, func(d *models.Deck) bool { return d.ID == id })
	return nil
}

func (r *fakeRemote) Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribeCalls++
	r.onEvent = onEvent
	return &fakeSubscription{}, nil
}

func (r *fakeRemote) set(fn func(r *fakeRemote)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *fakeRemote) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, d := range r.rows {
		out = append(out, d.Title)
	}
	return out
}

type fakeSubscription struct {
	closed atomic.Bool

	once  sync.Once
	mu    sync.Mutex
	done  chan struct{}
	ended bool
}

func (s *fakeSubscription) doneCh() chan struct{} {
	s.once.Do(func() { s.done = make(chan struct{}) })
	return s.done
}

func (s *fakeSubscription) Close() error {
	s.closed.Store(true)
	s.end()
	return nil
}

func (s *fakeSubscription) Done() <-chan struct{} {
	return s.doneCh()
}

// end simulates a feed that stopped on its own.
func (s *fakeSubscription) end() {
	ch := s.doneCh()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.ended = true
		close(ch)
	}
}

// ── connectivity, clock, notifier ─────────────────────────────────────────────

type fakeNetwork struct {
	online atomic.Bool
}

func newFakeNetwork(online bool) *fakeNetwork {
	n := &fakeNetwork{}
	n.online.Store(online)
	return n
}

func (n *fakeNetwork) Online() bool { return n.online.Load() }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []models.Notification
}

func (n *recordingNotifier) Notify(item models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *recordingNotifier) levels() []models.NotificationLevel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NotificationLevel, 0, len(n.items))
	for _, it := range n.items {
		out = append(out, it.Level)
	}
	return out
}

func (n *recordingNotifier) last() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return models.Notification{}
	}
	return n.items[len(n.items)-1]
}

// ── persistence ───────────────────────────────────────────────────────────────

type memQueueStore struct {
	mu  sync.Mutex
	ops []models.Operation
}

func (s *memQueueStore) LoadOperations(ctx context.Context, collection string) ([]models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Operation
	for _, op := range s.ops {
		if op.Collection == collection {
			out = append(out, op)
		}
	}
	return out, nil
}

func (s *memQueueStore) SaveOperation(ctx context.Context, op models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.ops, func(o models.Operation) bool { return o.ID == op.ID })
	if idx >= 0 {
		s.ops[idx] = op
		return nil
	}
	s.ops = append(s.ops, op)
	return nil
}

func (s *memQueueStore) DeleteOperation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = slices.DeleteFunc(s.ops, func(o models.Operation) bool { return o.ID == id })
	return nil
}

func (s *memQueueStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

type memSnapshotStore struct {
	mu    sync.Mutex
	snaps map[string]models.Snapshot
	saves int
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{snaps: make(map[string]models.Snapshot)}
}

func (s *memSnapshotStore) LoadSnapshot(ctx context.Context, collection string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[collection]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *memSnapshotStore) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Collection] = snap
	s.saves++
	return nil
}

func (s *memSnapshotStore) get(collection string) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[collection]
	return snap, ok
}
