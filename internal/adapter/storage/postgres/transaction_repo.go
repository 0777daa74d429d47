package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, account_id, amount, type, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.AccountID, t.Amount, t.Type, t.Status,
		t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, account_id, amount, type, status, description, created_at, updated_at
		FROM transactions WHERE id = $1`

	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus updates a transaction's status within a database transaction.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// List fetches transactions scoped to the user's accounts with filtering and
// pagination, most recent first, plus the total matching count.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.AccountID != nil {
		conditions = append(conditions, fmt.Sprintf("t.account_id = $%d", argIdx))
		args = append(args, *params.AccountID)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	from := `FROM transactions t JOIN accounts a ON t.account_id = a.id WHERE ` + strings.Join(conditions, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT t.id, t.account_id, t.amount, t.type, t.status, t.description, t.created_at, t.updated_at
		%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, from, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Type, &t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Type, &t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
