package core

// scheduler.go runs background maintenance jobs.
//
// The history job purges import batches older than the retention window.
// It runs once on start and then every CheckInterval until ctx is cancelled.
// A failed run is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// HistoryConfig holds configuration for the history retention scheduler.
type HistoryConfig struct {
	RetentionDays int           // Days of import history to keep (default: 90)
	CheckInterval time.Duration // How often to purge (default: 24h)
}

func (c HistoryConfig) withDefaults() HistoryConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartHistoryScheduler blocks, purging old import history periodically.
// Run it in its own goroutine.
func (s *Service) StartHistoryScheduler(ctx context.Context, cfg HistoryConfig) {
	cfg = cfg.withDefaults()
	slog.Info("history scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval.String(),
	)

	s.runHistoryJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history scheduler stopped")
			return
		case <-ticker.C:
			s.runHistoryJob(ctx, cfg)
		}
	}
}

// runHistoryJob performs one purge.
func (s *Service) runHistoryJob(ctx context.Context, cfg HistoryConfig) {
	start := time.Now()
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	purged, err := s.PurgeHistory(ctx, retention)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return
	}

	slog.Info("purged import history",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
