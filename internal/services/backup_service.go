package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kitengela/studio/internal/config"
	"github.com/kitengela/studio/internal/models"
	"github.com/kitengela/studio/internal/storage"
)

var backupNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.sql$`)

// CommandRunner runs an external program without a shell
type CommandRunner interface {
	Run(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// OffsiteUploader copies a finished dump to remote storage
type OffsiteUploader interface {
	Upload(ctx context.Context, key, path string) error
}

// BackupRepository records backup runs
type BackupRepository interface {
	Create(ctx context.Context, b *models.Backup) error
	MarkCompleted(ctx context.Context, id int64, size int64) error
	MarkFailed(ctx context.Context, id int64) error
}

// BackupService creates, lists and serves database dumps
type BackupService struct {
	repo        BackupRepository
	runner      CommandRunner
	offsite     OffsiteUploader
	db          config.DatabaseConfig
	dir         string
	dumpCommand string
	timeout     time.Duration
	audit       *AuditService
	logger      *slog.Logger
	now         func() time.Time
}

// NewBackupService creates the backup directory and returns the service.
// offsite may be nil.
func NewBackupService(
	repo BackupRepository,
	runner CommandRunner,
	offsite OffsiteUploader,
	dbCfg config.DatabaseConfig,
	backupCfg config.BackupConfig,
	audit *AuditService,
	logger *slog.Logger,
) (*BackupService, error) {
	dir, err := storage.EnsureDir(backupCfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}

	return &BackupService{
		repo:        repo,
		runner:      runner,
		offsite:     offsite,
		db:          dbCfg,
		dir:         dir,
		dumpCommand: backupCfg.DumpCommand,
		timeout:     backupCfg.Timeout,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// BackupFileName names a dump after its UTC creation time, e.g.
// backup-2026-03-01T09-30-15-250Z.sql.
func BackupFileName(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("backup-%s-%03dZ.sql", at.Format("2006-01-02T15-04-05"), at.Nanosecond()/int(time.Millisecond))
}

func (s *BackupService) dumpArgs(path string) []string {
	return []string{
		"--host", s.db.Host,
		"--port", strconv.Itoa(s.db.Port),
		"--username", s.db.User,
		"--dbname", s.db.Name,
		"--no-owner",
		"--file", path,
	}
}

// CreateDatabaseBackup dumps the database into a new file in the backup directory.
func (s *BackupService) CreateDatabaseBackup(ctx context.Context, actorID string) (*models.Backup, error) {
	name := BackupFileName(s.now())
	path := filepath.Join(s.dir, name)

	backup := &models.Backup{
		Filename:   name,
		FilePath:   path,
		BackupType: models.BackupTypeDatabase,
	}
	if actorID != "" {
		backup.CreatedBy = &actorID
	}

	if err := s.repo.Create(ctx, backup); err != nil {
		s.audit.Record(ctx, actorID, models.ActionBackupDatabase, false, "Failed to record backup.")
		return nil, fmt.Errorf("record backup: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var stderr bytes.Buffer
	err := s.runner.Run(runCtx, s.dumpCommand, s.dumpArgs(path),
		[]string{"PGPASSWORD=" + s.db.Password}, io.Discard, &stderr)
	if err != nil {
		s.fail(ctx, backup, actorID, err, stderr.String())
		return nil, fmt.Errorf("dump database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		s.fail(ctx, backup, actorID, err, "")
		return nil, fmt.Errorf("stat dump: %w", err)
	}

	size := info.Size()
	if err := s.repo.MarkCompleted(ctx, backup.ID, size); err != nil {
		s.logger.Error("failed to mark backup completed", slog.Int64("backup_id", backup.ID), slog.Any("error", err))
	}
	backup.Status = models.BackupStatusCompleted
	backup.Size = &size

	if s.offsite != nil {
		s.uploadOffsite(ctx, name, path)
	}

	s.audit.Record(ctx, actorID, models.ActionBackupDatabase, true, "Backup created: "+name)
	s.logger.Info("database backup created", slog.String("file", name), slog.Int64("size", size))

	return backup, nil
}

// uploadOffsite copies a finished dump with its own timeout, independent of
// the time the dump took.
func (s *BackupService) uploadOffsite(ctx context.Context, name, path string) {
	uploadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.offsite.Upload(uploadCtx, "database/"+name, path); err != nil {
		s.logger.Warn("offsite backup copy failed", slog.String("file", name), slog.Any("error", err))
	}
}

func (s *BackupService) fail(ctx context.Context, backup *models.Backup, actorID string, cause error, stderr string) {
	s.logger.Error("database backup failed",
		slog.String("file", backup.Filename),
		slog.String("stderr", strings.TrimSpace(stderr)),
		slog.Any("error", cause))

	if err := storage.Remove(backup.FilePath); err != nil {
		s.logger.Warn("failed to remove partial dump", slog.String("file", backup.Filename), slog.Any("error", err))
	}
	if err := s.repo.MarkFailed(ctx, backup.ID); err != nil {
		s.logger.Error("failed to mark backup failed", slog.Int64("backup_id", backup.ID), slog.Any("error", err))
	}
	backup.Status = models.BackupStatusFailed

	s.audit.Record(ctx, actorID, models.ActionBackupDatabase, false, "Backup failed: "+backup.Filename)
}

// ListBackups returns the .sql files in the backup directory, newest first.
func (s *BackupService) ListBackups() ([]*models.BackupFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	files := make([]*models.BackupFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, &models.BackupFile{
			Name: e.Name(),
			Date: info.ModTime().UTC(),
			Size: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Date.After(files[j].Date)
	})

	return files, nil
}

// ValidBackupName reports whether name may be served from the backup directory.
func ValidBackupName(name string) bool {
	return backupNamePattern.MatchString(name) && filepath.Base(name) == name
}

// OpenBackup opens a dump for download. The caller closes the file.
func (s *BackupService) OpenBackup(ctx context.Context, actorID, name string) (*os.File, os.FileInfo, error) {
	if !ValidBackupName(name) {
		s.audit.Record(ctx, actorID, models.ActionDownloadBackup, false, "Rejected backup name.")
		return nil, nil, fmt.Errorf("%w: Invalid backup file name.", models.ErrBadRequest)
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: Backup file not found.", models.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open backup: %w", err)
	}

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: Backup file not found.", models.ErrNotFound)
	}

	s.audit.Record(ctx, actorID, models.ActionDownloadBackup, true, "Downloaded "+name)
	return f, info, nil
}
