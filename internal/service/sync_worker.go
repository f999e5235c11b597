package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/rs/zerolog"
)

// Refresher reloads the expense list from the data backend
type Refresher interface {
	Refresh(ctx context.Context) ([]*domain.Expense, error)
}

// SyncWorker periodically refreshes expenses so changes made elsewhere
// against the remote data service show up without a manual refresh
type SyncWorker struct {
	refresher Refresher
	logger    zerolog.Logger
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// DefaultSyncInterval is used when a non-positive interval is given
const DefaultSyncInterval = 5 * time.Minute

// NewSyncWorker creates a new sync worker
func NewSyncWorker(refresher Refresher, logger zerolog.Logger, interval time.Duration) *SyncWorker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &SyncWorker{
		refresher: refresher,
		logger:    logger.With().Str("component", "sync_worker").Logger(),
		interval:  interval,
	}
}

// Start begins the background refresh. Calling it twice is a no-op;
// a stopped worker can be started again.
func (w *SyncWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	w.stopCh, w.doneCh = stopCh, doneCh
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting sync worker")

	go w.run(ctx, stopCh, doneCh)
}

// Stop stops the worker and waits for the loop to exit. Only the first of
// several concurrent calls closes the loop; the others just wait.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	doneCh := w.doneCh
	if !w.running {
		w.mu.Unlock()
		if doneCh != nil {
			<-doneCh
		}
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping sync worker")
	<-doneCh
	w.logger.Info().Msg("Sync worker stopped")
}

func (w *SyncWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		// A later Start owns the flag once the channels have been replaced
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.SyncOnce(ctx)
		}
	}
}

// SyncOnce runs a single refresh. It reports whether the list was reloaded;
// without an active session there is nothing to refresh.
func (w *SyncWorker) SyncOnce(ctx context.Context) bool {
	start := time.Now()

	expenses, err := w.refresher.Refresh(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSession) {
			w.logger.Debug().Msg("No active session, skipping sync")
			return false
		}
		w.logger.Warn().Err(err).Msg("Background sync failed")
		return false
	}

	w.logger.Debug().
		Int("expenses", len(expenses)).
		Dur("elapsed", time.Since(start)).
		Msg("Completed background sync")
	return true
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
