package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kitengela/studio/internal/database"
	"github.com/kitengela/studio/internal/models"
)

// BackupRepository records database backup runs
type BackupRepository struct {
	pool *pgxpool.Pool
}

// NewBackupRepository creates a new BackupRepository
func NewBackupRepository(db *database.DB) *BackupRepository {
	return &BackupRepository{pool: db.Pool}
}

// Create inserts a backup row in state in_progress.
func (r *BackupRepository) Create(ctx context.Context, b *models.Backup) error {
	if b.BackupType == "" {
		b.BackupType = models.BackupTypeDatabase
	}
	b.Status = models.BackupStatusInProgress

	var createdBy *string
	if b.CreatedBy != nil && validID(*b.CreatedBy) {
		createdBy = b.CreatedBy
	}

	query := `
		INSERT INTO backups (filename, file_path, backup_type, status, created_by, is_automatic)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		b.Filename, b.FilePath, b.BackupType, b.Status, createdBy, b.IsAutomatic,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create backup record: %w", database.MapPostgresError(err))
	}

	return nil
}

func (r *BackupRepository) MarkCompleted(ctx context.Context, id int64, size int64) error {
	return r.setStatus(ctx, id, models.BackupStatusCompleted, &size)
}

func (r *BackupRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, models.BackupStatusFailed, nil)
}

func (r *BackupRepository) setStatus(ctx context.Context, id int64, status string, size *int64) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE backups SET status = $1, file_size = COALESCE($2, file_size) WHERE id = $3`,
		status, size, id,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Count returns the number of completed backups.
func (r *BackupRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM backups WHERE status = $1`, models.BackupStatusCompleted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count backups: %w", err)
	}
	return n, nil
}
