package syncengine

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-study-sync/models"
)

// loadLocal restores the persisted queue and, if the cache was never
// written, the persisted snapshot.
func (c *Controller[T]) loadLocal(ctx context.Context) {
	if err := c.queue.Load(ctx); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.loadLocal").Msg("queue not restored")
	}

	if c.snapshots == nil || c.cache.Version() > 0 {
		return
	}

	snap, err := c.snapshots.LoadSnapshot(ctx, c.opts.Collection)
	if err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.loadLocal").Msg("snapshot not restored")
		return
	}
	if snap == nil {
		return
	}

	var items []T
	if err = json.Unmarshal(snap.Items, &items); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.loadLocal").Msg("snapshot is corrupt")
		return
	}

	c.cache.Restore(CacheEntry[T]{
		Items:     items,
		Timestamp: snap.FetchedAt,
		Version:   snap.Version,
	})
	c.persistedVersion = snap.Version

	c.log.Debug().Str("func", "Controller.loadLocal").Int("items", len(items)).
		Time("fetched_at", snap.FetchedAt).Msg("snapshot restored")
}

// persistSnapshot writes the cache through to the snapshot store when it
// changed since the last write.
func (c *Controller[T]) persistSnapshot(ctx context.Context) {
	if c.snapshots == nil {
		return
	}

	entry := c.cache.Entry()
	if entry.Version == c.persistedVersion {
		return
	}

	raw, err := json.Marshal(entry.Items)
	if err != nil {
		c.log.Error().Err(err).Str("func", "Controller.persistSnapshot").Msg("encode snapshot")
		return
	}

	err = c.snapshots.SaveSnapshot(context.WithoutCancel(ctx), models.Snapshot{
		Collection: c.opts.Collection,
		Items:      raw,
		Version:    entry.Version,
		FetchedAt:  entry.Timestamp,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.persistSnapshot").Msg("snapshot not saved")
		return
	}
	c.persistedVersion = entry.Version
}
