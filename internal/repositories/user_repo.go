package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kitengela/studio/internal/database"
	"github.com/kitengela/studio/internal/models"
)

const userColumns = `id, full_name, email, password_hash, is_admin, approved, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
		&user.IsAdmin, &user.Approved, &user.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// validID reports whether id can be a users.id value. Anything else cannot
// match a row, so callers treat it as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create inserts a new user. A duplicate email surfaces as models.ErrConflict
// through the unique index; there is no separate existence check.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (id, full_name, email, password_hash, is_admin, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.FullName, user.Email, user.PasswordHash,
		user.IsAdmin, user.Approved, user.CreatedAt,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

// ListExcept returns every user other than excludeID, newest first.
func (r *UserRepository) ListExcept(ctx context.Context, excludeID string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id::text <> $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// Approve sets approved=true and reports whether the user was pending.
// Approving an already approved user succeeds and returns false.
func (r *UserRepository) Approve(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, models.ErrNotFound
	}

	result, err := r.pool.Exec(ctx, `UPDATE users SET approved = true WHERE id = $1 AND approved = false`, id)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	if !exists {
		return false, models.ErrNotFound
	}

	return false, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.ErrNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SeedAdmin inserts the bootstrap administrator unless a user with the same
// email already exists. It reports whether a row was inserted.
func (r *UserRepository) SeedAdmin(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, full_name, email, password_hash, is_admin, approved, created_at)
		VALUES ($1, $2, $3, $4, true, true, $5)
		ON CONFLICT (email) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		uuid.New().String(), user.FullName, user.Email, user.PasswordHash, time.Now().UTC(),
	)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
