package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/wardenhq/warden/internal/admin/store"
)

// HousekeepingService periodically sweeps database state that would
// otherwise linger: expired timed locks and soft-deleted users past the
// retention window.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Retention is how long a soft-deleted user is kept before the row
	// is purged. Zero or negative disables purging.
	Retention time.Duration

	// Now is the clock; tests override it. Nil means time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// sweep interval. If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start begins the background worker. Non-blocking; call Stop to shut
// it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup.
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs one pass. Each task is independent; a failure in one
// does not stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := s.now()

	if n, err := s.Store.Users().ClearExpiredLocks(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired locks", "error", err)
	} else if n > 0 {
		s.Logger.Info("cleared expired locks", "count", n)
	}

	if s.Retention > 0 {
		cutoff := now.Add(-s.Retention)
		if n, err := s.Store.Users().PurgeDeletedUsersBefore(ctx, cutoff); err != nil {
			s.Logger.Error("failed to purge deleted users", "error", err)
		} else if n > 0 {
			s.Logger.Info("purged deleted users", "count", n)
		}
	}
}
