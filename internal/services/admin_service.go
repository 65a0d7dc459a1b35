package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kitengela/studio/internal/models"
	"github.com/kitengela/studio/internal/storage"
)

const recentLogLimit = 100

// AdminFileRepository is the subset of FileRepository methods needed by AdminService.
type AdminFileRepository interface {
	ListAll(ctx context.Context) ([]*models.AdminFile, error)
	Approve(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (string, error)
	Count(ctx context.Context) (int64, error)
}

// ActivityLogReader is the subset of ActivityLogRepository methods needed by AdminService.
type ActivityLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// BackupCounter counts completed backups.
type BackupCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminService implements the admin console operations.
type AdminService struct {
	users    UserRepository
	files    AdminFileRepository
	logs     ActivityLogReader
	backups  BackupCounter
	notifier Notifier
	audit    *AuditService
	logger   *slog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users UserRepository,
	files AdminFileRepository,
	logs ActivityLogReader,
	backups BackupCounter,
	notifier Notifier,
	audit *AuditService,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		users:    users,
		files:    files,
		logs:     logs,
		backups:  backups,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// ListUsers returns every account except the caller's.
func (s *AdminService) ListUsers(ctx context.Context, actorID string) ([]*models.PublicUser, error) {
	users, err := s.users.ListExcept(ctx, actorID)
	if err != nil {
		s.audit.Record(ctx, actorID, models.ActionFetchUsers, false, err.Error())
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// ApproveUser marks the account approved. A best-effort notice is sent only
// when the account was pending.
func (s *AdminService) ApproveUser(ctx context.Context, actorID, targetID string) error {
	changed, err := s.users.Approve(ctx, targetID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: User not found.", models.ErrNotFound)
		}
		s.audit.Record(ctx, actorID, models.ActionApproveUser, false, err.Error())
		return fmt.Errorf("approve user: %w", err)
	}

	s.audit.Record(ctx, actorID, models.ActionApproveUser, true, "Approved user ID "+targetID)
	if changed {
		s.notifyApproved(ctx, targetID)
	}

	return nil
}

func (s *AdminService) notifyApproved(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("approval notice skipped", slog.String("user_id", userID), slog.Any("error", err))
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.notifier.NotifyApproved(notifyCtx, user); err != nil {
		s.logger.Warn("approval notice failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}

// DeleteUser removes an account. Files it uploaded are kept without an owner.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		s.audit.Record(ctx, actorID, models.ActionDeleteUser, false, "Attempted to delete own account.")
		return fmt.Errorf("%w: You cannot delete your own account.", models.ErrValidation)
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: User not found.", models.ErrNotFound)
		}
		s.audit.Record(ctx, actorID, models.ActionDeleteUser, false, err.Error())
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, actorID, models.ActionDeleteUser, true, "Deleted user ID "+targetID)
	return nil
}

func (s *AdminService) ListFiles(ctx context.Context, actorID string) ([]*models.AdminFile, error) {
	files, err := s.files.ListAll(ctx)
	if err != nil {
		s.audit.Record(ctx, actorID, models.ActionFetchFiles, false, err.Error())
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// parseFileID treats ids that cannot name a row as not found.
func parseFileID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: File not found.", models.ErrNotFound)
	}
	return n, nil
}

func (s *AdminService) ApproveFile(ctx context.Context, actorID, fileID string) error {
	id, err := parseFileID(fileID)
	if err != nil {
		return err
	}

	if err := s.files.Approve(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: File not found.", models.ErrNotFound)
		}
		s.audit.Record(ctx, actorID, models.ActionApproveFile, false, err.Error())
		return fmt.Errorf("approve file: %w", err)
	}

	s.audit.Record(ctx, actorID, models.ActionApproveFile, true, "Approved file ID "+fileID)
	return nil
}

// DeleteFile removes the file record and its stored upload. The backup copy stays.
func (s *AdminService) DeleteFile(ctx context.Context, actorID, fileID string) error {
	id, err := parseFileID(fileID)
	if err != nil {
		return err
	}

	path, err := s.files.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: File not found.", models.ErrNotFound)
		}
		s.audit.Record(ctx, actorID, models.ActionDeleteFile, false, err.Error())
		return fmt.Errorf("delete file: %w", err)
	}

	if err := storage.Remove(path); err != nil {
		s.logger.Warn("failed to remove stored upload", slog.Int64("file_id", id), slog.Any("error", err))
	}

	s.audit.Record(ctx, actorID, models.ActionDeleteFile, true, "Deleted file ID "+fileID)
	return nil
}

// RecentLogs returns the newest activity log entries.
func (s *AdminService) RecentLogs(ctx context.Context, actorID string) ([]*models.ActivityLog, error) {
	logs, err := s.logs.ListRecent(ctx, recentLogLimit)
	if err != nil {
		s.audit.Record(ctx, actorID, models.ActionFetchLogs, false, err.Error())
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

// Stats returns the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Error("stats: failed to count users", slog.Any("error", err))
		return nil, err
	}

	files, err := s.files.Count(ctx)
	if err != nil {
		s.logger.Error("stats: failed to count files", slog.Any("error", err))
		return nil, err
	}

	backups, err := s.backups.Count(ctx)
	if err != nil {
		s.logger.Error("stats: failed to count backups", slog.Any("error", err))
		return nil, err
	}

	return &models.Stats{Users: users, Files: files, Backups: backups}, nil
}
