package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kitengela/studio/internal/database"
	"github.com/kitengela/studio/internal/models"
)

// FileRepository handles uploaded file metadata
type FileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *database.DB) *FileRepository {
	return &FileRepository{pool: db.Pool}
}

// Create records an uploaded file with status Pending and returns its id.
func (r *FileRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	if file.Status == "" {
		file.Status = models.FileStatusPending
	}
	if file.UploadDate.IsZero() {
		file.UploadDate = time.Now().UTC()
	}

	query := `
		INSERT INTO files (user_id, original_name, storage_name, storage_path, file_size, status, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		file.UserID, file.OriginalName, file.StorageName, file.StoragePath,
		file.Size, file.Status, file.UploadDate,
	).Scan(&file.ID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return file.ID, nil
}

// ListByUser returns the files owned by userID, newest first.
func (r *FileRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserFile, error) {
	if !validID(userID) {
		return []*models.UserFile{}, nil
	}

	query := `
		SELECT original_name, status, upload_date
		FROM files
		WHERE user_id = $1
		ORDER BY upload_date DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := make([]*models.UserFile, 0)
	for rows.Next() {
		var f models.UserFile
		if err := rows.Scan(&f.Filename, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file rows: %w", err)
	}

	return files, nil
}

// ListAll returns every file with its uploader's name. Files whose uploader
// was deleted are included with a nil UploadedBy.
func (r *FileRepository) ListAll(ctx context.Context) ([]*models.AdminFile, error) {
	query := `
		SELECT f.id, f.original_name, f.file_size, f.status, f.upload_date, u.full_name
		FROM files f
		LEFT JOIN users u ON u.id = f.user_id
		ORDER BY f.upload_date DESC, f.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := make([]*models.AdminFile, 0)
	for rows.Next() {
		var f models.AdminFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.Size, &f.Status, &f.UploadDate, &f.UploadedBy); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file rows: %w", err)
	}

	return files, nil
}

// Approve sets the file status to Approved. Repeating it succeeds.
func (r *FileRepository) Approve(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE files SET status = $1 WHERE id = $2`, models.FileStatusApproved, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes the metadata row and returns the stored file path so the
// caller can remove the content.
func (r *FileRepository) Delete(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx, `DELETE FROM files WHERE id = $1 RETURNING storage_path`, id).Scan(&path)
	if err != nil {
		return "", database.MapPostgresError(err)
	}

	return path, nil
}

func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}
