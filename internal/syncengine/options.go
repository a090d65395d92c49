package syncengine

import (
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
)

// Defaults used when the matching [Options] field is zero.
const (
	DefaultCacheTimeout = 5 * time.Minute
	DefaultMaxRetries   = 3
)

// Options tune a [Controller].
type Options struct {
	// Collection names the remote table; it keys the queue and snapshot.
	Collection string
	// UserID is stamped on created records that carry none.
	UserID int64
	// CacheTimeout is how long a fetched snapshot counts as fresh.
	CacheTimeout time.Duration
	// OfflineQueue defers failed mutations instead of rolling them back.
	OfflineQueue bool
	// MaxRetries is how many failed drain attempts an operation survives.
	MaxRetries int
	// BackoffBase and BackoffCap bound the delay before an operation is
	// retried. A zero base retries on every drain.
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// DropPermanentFailures drops an operation as soon as IsPermanent
	// reports its error as non-retryable.
	DropPermanentFailures bool
	IsPermanent           func(error) bool
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// DefaultOptions returns the options a collection gets when nothing is
// configured: five minute freshness, offline queue on, three retries.
func DefaultOptions(collection string) Options {
	return Options{
		Collection:   collection,
		CacheTimeout: DefaultCacheTimeout,
		OfflineQueue: true,
		MaxRetries:   DefaultMaxRetries,
	}
}

func (o Options) withDefaults() Options {
	if o.CacheTimeout <= 0 {
		o.CacheTimeout = DefaultCacheTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.BackoffCap < o.BackoffBase {
		o.BackoffCap = o.BackoffBase
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type settings struct {
	queueStore    QueueStore
	snapshotStore SnapshotStore
	network       Connectivity
	notifier      Notifier
	log           *logger.Logger
}

// Option wires an optional collaborator into a [Controller].
type Option func(*settings)

// WithQueueStore makes the operation queue durable.
func WithQueueStore(s QueueStore) Option {
	return func(st *settings) { st.queueStore = s }
}

// WithSnapshotStore persists cache snapshots between runs.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(st *settings) { st.snapshotStore = s }
}

// WithConnectivity lets the controller skip the network while offline.
func WithConnectivity(c Connectivity) Option {
	return func(st *settings) { st.network = c }
}

// WithNotifier sets the sink for user-facing messages.
func WithNotifier(n Notifier) Option {
	return func(st *settings) { st.notifier = n }
}

// WithLogger sets the controller logger.
func WithLogger(l *logger.Logger) Option {
	return func(st *settings) { st.log = l }
}
