package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, email, password, created_at, updated_at
		FROM users WHERE id = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, password, created_at, updated_at
		FROM users WHERE email = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// Update applies a partial update; nil fields keep their stored value.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, params ports.UserUpdateParams) (*domain.User, error) {
	query := `UPDATE users
		SET name = COALESCE($1, name),
			email = COALESCE($2, email),
			password = COALESCE($3, password),
			updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, email, password, created_at, updated_at`

	return r.scanUser(r.pool.QueryRow(ctx, query, params.Name, params.Email, params.PasswordHash, id))
}

// Delete removes a user, reporting whether a row was deleted.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List fetches users ordered by creation time descending.
func (r *UserRepo) List(ctx context.Context, offset, limit int64) ([]domain.User, error) {
	query := `SELECT id, name, email, password, created_at, updated_at
		FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u := domain.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// scanUser is a helper to scan a single row into a User.
func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
