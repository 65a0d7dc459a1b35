package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kitengela/studio/internal/models"
	"github.com/kitengela/studio/internal/storage"
)

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,16}$`)

// FileRepository defines the persistence operations on uploaded files
type FileRepository interface {
	Create(ctx context.Context, file *models.File) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserFile, error)
}

// FileService stores uploads and keeps a backup copy of each one
type FileService struct {
	repo    FileRepository
	uploads *storage.DiskStore
	backups *storage.DiskStore
	audit   *AuditService
	logger  *slog.Logger
	now     func() time.Time
}

// NewFileService creates a new FileService
func NewFileService(repo FileRepository, uploads, backups *storage.DiskStore, audit *AuditService, logger *slog.Logger) *FileService {
	return &FileService{
		repo:    repo,
		uploads: uploads,
		backups: backups,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// StoredName builds the on-disk name for an upload: owner, millisecond
// timestamp, a random suffix and the original extension.
func StoredName(userID, originalName string, at time.Time) string {
	ext := filepath.Ext(originalName)
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s%s", userID, at.UnixMilli(), suffix, ext)
}

// Upload saves content for userID and records it with status Pending.
func (s *FileService) Upload(ctx context.Context, userID, originalName string, content io.Reader) (int64, error) {
	originalName = filepath.Base(strings.ReplaceAll(strings.TrimSpace(originalName), `\`, "/"))
	if originalName == "" || originalName == "." || originalName == "/" {
		return 0, fmt.Errorf("%w: No file uploaded", models.ErrValidation)
	}

	name := StoredName(userID, originalName, s.now())

	path, size, err := s.uploads.Save(content, name)
	if err != nil {
		s.audit.Record(ctx, userID, models.ActionUpload, false, "Failed to store file.")
		s.logger.Error("failed to store upload", slog.String("user_id", userID), slog.Any("error", err))
		return 0, fmt.Errorf("store upload: %w", err)
	}

	owner := userID
	id, err := s.repo.Create(ctx, &models.File{
		UserID:       &owner,
		OriginalName: originalName,
		StorageName:  name,
		StoragePath:  path,
		Size:         size,
		Status:       models.FileStatusPending,
	})
	if err != nil {
		if rmErr := storage.Remove(path); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", slog.String("path", path), slog.Any("error", rmErr))
		}
		s.audit.Record(ctx, userID, models.ActionUpload, false, err.Error())
		s.logger.Error("failed to record upload", slog.String("user_id", userID), slog.Any("error", err))
		return 0, fmt.Errorf("record upload: %w", err)
	}

	if _, err := s.backups.CopyFrom(path, name); err != nil {
		s.logger.Error("backup copy failed", slog.Int64("file_id", id), slog.Any("error", err))
	}

	s.audit.Record(ctx, userID, models.ActionUpload, true, "File: "+originalName)
	s.logger.Info("file uploaded", slog.Int64("file_id", id), slog.Int64("size", size))

	return id, nil
}

// List returns the caller's files, newest first.
func (s *FileService) List(ctx context.Context, userID string) ([]*models.UserFile, error) {
	files, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}
