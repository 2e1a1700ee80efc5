package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// LogPruner deletes rewrite log entries older than a number of days.
type LogPruner interface {
	CleanOldRewriteLogs(days int) (int64, error)
}

// Scheduler runs periodic housekeeping for the bot.
type Scheduler struct {
	db            LogPruner
	retentionDays int
	interval      time.Duration
}

func New(db LogPruner, retentionDays int) *Scheduler {
	return &Scheduler{db: db, retentionDays: retentionDays, interval: time.Hour}
}

// Run starts the housekeeping loop. It prunes the rewrite log every hour
// until ctx is cancelled. A non-positive retention disables pruning.
func (s *Scheduler) Run(ctx context.Context) {
	if s.retentionDays <= 0 {
		slog.Info("Rewrite log pruning disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "retention_days", s.retentionDays)

	// Run once immediately at startup
	s.prune()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Scheduler) prune() {
	n, err := s.db.CleanOldRewriteLogs(s.retentionDays)
	if err != nil {
		slog.Error("Failed to prune rewrite log", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Pruned rewrite log", "deleted", n)
	}
}
