package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/metrics"
	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
)

// HousekeepingService periodically removes expired challenges and
// verifications so abandoned logins do not accumulate.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  *metrics.Metrics

	// DevCodes is swept alongside the tables when the dev sink is on.
	DevCodes *sms.DevCodes

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to 15 minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a cleanup immediately and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each table is independent; a failure in one
// does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	if n, err := s.Store.Challenges().DeleteExpiredChallenges(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
	} else {
		s.Metrics.HousekeepingDeleted("challenges", n)
		s.Logger.Debug("deleted expired challenges", "count", n)
	}

	if n, err := s.Store.Verifications().DeleteExpiredVerifications(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired verifications", "error", err)
	} else {
		s.Metrics.HousekeepingDeleted("verifications", n)
		s.Logger.Debug("deleted expired verifications", "count", n)
	}

	if s.DevCodes != nil {
		s.DevCodes.Sweep()
	}
}
