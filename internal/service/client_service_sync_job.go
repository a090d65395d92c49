package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/logger"
)

const defaultSyncInterval = 5 * time.Minute

type clientSyncJob struct {
	syncService ClientSyncService
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a job that calls syncService.SyncAll on a
// ticker. The job is idle until Start is called.
func NewClientSyncJob(syncService ClientSyncService, log *logger.Logger) ClientSyncJob {
	if log == nil {
		log = logger.Nop()
	}
	return &clientSyncJob{syncService: syncService, logger: log}
}

func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if err := j.syncService.SyncAll(jobCtx); err != nil && jobCtx.Err() == nil {
					j.logger.Debug().Err(err).Str("func", "clientSyncJob").Msg("periodic sync incomplete")
				}
			}
		}
	}()
}

// Stop is a no-op when the job is not running.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
