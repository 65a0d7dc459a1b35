package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kitengela/studio/internal/database"
	"github.com/kitengela/studio/internal/models"
)

// ActivityLogRepository handles activity log data access
type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *database.DB) *ActivityLogRepository {
	return &ActivityLogRepository{pool: db.Pool}
}

func scanActivityLogRow(row rowScanner) (*models.ActivityLog, error) {
	var log models.ActivityLog
	var message *string

	err := row.Scan(
		&log.ID, &log.UserID, &log.UserName,
		&log.Action, &log.Status, &message, &log.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if message != nil {
		log.Message = *message
	}

	return &log, nil
}

func scanActivityLogRows(rows pgx.Rows) ([]*models.ActivityLog, error) {
	defer rows.Close()

	logs := make([]*models.ActivityLog, 0)

	for rows.Next() {
		log, err := scanActivityLogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log rows: %w", err)
	}

	return logs, nil
}

// Create appends an entry. An actor that no longer exists is stored as NULL.
func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	var actor *string
	if log.UserID != nil && validID(*log.UserID) {
		actor = log.UserID
	}

	query := `
		INSERT INTO activity_logs (user_id, action, status, message)
		VALUES ((SELECT id FROM users WHERE id = $1), $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, actor, log.Action, log.Status, log.Message).
		Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", database.MapPostgresError(err))
	}

	return nil
}

// ListRecent returns the newest entries with the actor's name when the actor still exists.
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	query := `
		SELECT l.id, l.user_id, u.full_name, l.action, l.status, l.message, l.created_at
		FROM activity_logs l
		LEFT JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}

	return scanActivityLogRows(rows)
}

// DeleteOlderThan removes entries older than the given number of days
func (r *ActivityLogRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM activity_logs WHERE created_at < NOW() - make_interval(days => $1)`

	result, err := r.pool.Exec(ctx, query, days)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old activity logs: %w", err)
	}

	return result.RowsAffected(), nil
}
