package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
)

// DefaultSyncJobInterval is used when Start gets a non-positive interval.
const DefaultSyncJobInterval = 5 * time.Minute

type clientSyncJob struct {
	syncService SyncService
	aclService  ACLService
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that periodically asks the relay
// for the document list and refreshes permissions. The job is idle until
// Start is called.
func NewClientSyncJob(syncService SyncService, aclService ACLService, logger *logger.Logger) ClientSyncJob {
	return &clientSyncJob{syncService: syncService, aclService: aclService, logger: logger}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that ticks every interval. The goroutine
// exits when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSyncJobInterval
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
				j.syncService.Refresh()
				if j.aclService == nil {
					continue
				}
				if err := j.aclService.RefreshACLs(jobCtx); err != nil && jobCtx.Err() == nil {
					j.logger.Warn().Err(err).Str("func", "clientSyncJob.Start").Msg("permission refresh failed")
				}
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running.
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
