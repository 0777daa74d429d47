package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.UserID, a.Balance, a.Currency, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, user_id, balance, currency, created_at, updated_at
		FROM accounts WHERE id = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// ListByUser fetches a user's accounts, most recent first.
func (r *AccountRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int64) ([]domain.Account, error) {
	query := `SELECT id, user_id, balance, currency, created_at, updated_at
		FROM accounts WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a := domain.Account{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return accounts, nil
}

// UpdateCurrency updates the currency code; a nil currency keeps the stored value.
func (r *AccountRepo) UpdateCurrency(ctx context.Context, id uuid.UUID, currency *string) (*domain.Account, error) {
	query := `UPDATE accounts
		SET currency = COALESCE($1, currency), updated_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, balance, currency, created_at, updated_at`

	return r.scanAccount(r.pool.QueryRow(ctx, query, currency, id))
}

// Delete removes an account, reporting whether a row was deleted.
func (r *AccountRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ApplyBalanceDelta mutates the balance as one conditional UPDATE. The debit
// form carries the sufficiency check in its WHERE clause, so the invariant
// check and the mutation are a single atomic statement and concurrent debits
// serialize on the row lock. Zero rows matched returns (nil, nil).
func (r *AccountRepo) ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal, credit bool) (*domain.Account, error) {
	var query string
	if credit {
		query = `UPDATE accounts
			SET balance = balance + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, user_id, balance, currency, created_at, updated_at`
	} else {
		query = `UPDATE accounts
			SET balance = balance - $1, updated_at = NOW()
			WHERE id = $2 AND balance >= $1
			RETURNING id, user_id, balance, currency, created_at, updated_at`
	}

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, amount, id).Scan(
		&a.ID, &a.UserID, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}
	return a, nil
}

// scanAccount is a helper to scan a single row into an Account.
func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}
