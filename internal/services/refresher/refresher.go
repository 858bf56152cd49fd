package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
)

var ErrRefreshFailed = errors.New("cache refresh failed")

// Cache is the part of the directory the refresher drives.
type Cache interface {
	Refresh(ctx context.Context) bool
}

// Service keeps the local caches fresh by re-fetching them on an interval.
type Service struct {
	log     *slog.Logger
	cache   Cache
	metrics *metrics.Metrics
}

func NewService(log *slog.Logger, cache Cache, metrics *metrics.Metrics) *Service {
	return &Service{log: log, cache: cache, metrics: metrics}
}

func (s *Service) initLogger(opn string) *slog.Logger {
	return s.log.With(
		sl.Op(opn),
		slog.String("division", "refresher"),
	)
}

// Start loads the caches once, then refreshes them every interval until ctx is done.
// It fails only when the initial load fails.
func (s *Service) Start(ctx context.Context, interval time.Duration) error {
	const opn = "Refresher.Start"
	log := s.initLogger(opn)

	// 1. Initial load
	log.InfoContext(ctx, "Loading caches")
	if err := s.RunOnce(ctx); err != nil {
		return fmt.Errorf("failed during initial load: %w", err)
	}

	// 2. Maintenance mode
	log.InfoContext(ctx, "Switching to maintenance mode.", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.DebugContext(ctx, "Periodic refresh triggered.")
			if err := s.RunOnce(ctx); err != nil {
				log.ErrorContext(ctx, "Periodic refresh failed", sl.Err(err))
			}
		case <-ctx.Done():
			log.InfoContext(ctx, "Service shutting down.")
			return nil
		}
	}
}

// RunOnce refreshes both caches and records the outcome.
func (s *Service) RunOnce(ctx context.Context) error {
	startTime := time.Now()

	if !s.cache.Refresh(ctx) {
		s.metrics.Runs.WithLabelValues("failure").Inc()
		return ErrRefreshFailed
	}

	s.metrics.Runs.WithLabelValues("success").Inc()
	s.metrics.LastSuccessfulRun.SetToCurrentTime()
	s.metrics.RunDuration.Observe(time.Since(startTime).Seconds())

	return nil
}
