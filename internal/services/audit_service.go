package services

import (
	"context"
	"log/slog"

	"github.com/kitengela/studio/internal/models"
)

// AuditQueue accepts activity log entries for asynchronous persistence
type AuditQueue interface {
	Enqueue(entry *models.ActivityLog) bool
}

// AuditService records activity log entries: an immediate slog line plus a
// queued database write. Recording never fails the caller.
type AuditService struct {
	queue  AuditQueue
	logger *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(queue AuditQueue, logger *slog.Logger) *AuditService {
	return &AuditService{
		queue:  queue,
		logger: logger,
	}
}

// Record logs an action by actorID (empty for anonymous actors).
func (s *AuditService) Record(ctx context.Context, actorID, action string, success bool, message string) {
	entry := models.NewActivity(actorID, action, success, message)

	if success {
		s.logger.InfoContext(ctx, "audit event",
			slog.String("action", action),
			slog.String("actor_id", actorID),
			slog.String("message", message),
		)
	} else {
		s.logger.WarnContext(ctx, "audit event failed",
			slog.String("action", action),
			slog.String("actor_id", actorID),
			slog.String("message", message),
		)
	}

	if s.queue == nil {
		return
	}
	if !s.queue.Enqueue(entry) {
		s.logger.WarnContext(ctx, "audit entry not persisted", slog.String("action", action))
	}
}
