package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ActivityPruner deletes activity log entries older than a number of days
type ActivityPruner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupManager periodically removes activity log entries past the retention window
type CleanupManager struct {
	pruner        ActivityPruner
	logger        *slog.Logger
	interval      time.Duration
	retentionDays int
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	pruner ActivityPruner,
	logger *slog.Logger,
	interval time.Duration,
	retentionDays int,
) *CleanupManager {
	return &CleanupManager{
		pruner:        pruner,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
	}
}

// Enabled reports whether a retention window is configured.
func (cm *CleanupManager) Enabled() bool {
	return cm.retentionDays > 0 && cm.interval > 0
}

// Start begins the periodic cleanup task. It returns immediately when
// retention is disabled.
func (cm *CleanupManager) Start(ctx context.Context) {
	if !cm.Enabled() {
		cm.logger.Info("activity log retention disabled")
		return
	}

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.pruner.DeleteOlderThan(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("failed to prune activity logs", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("activity log cleanup completed",
			slog.Int64("rows_deleted", rowsDeleted),
			slog.Int("retention_days", cm.retentionDays),
		)
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
