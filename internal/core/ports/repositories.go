package ports

import (
	"context"

	"ledger-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update applies COALESCE semantics: nil fields keep their stored value.
	Update(ctx context.Context, id uuid.UUID, params UserUpdateParams) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int64) ([]domain.User, error)
}

// UserUpdateParams holds optional user fields for partial updates.
type UserUpdateParams struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside the ledger's transaction boundary.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int64) ([]domain.Account, error)
	UpdateCurrency(ctx context.Context, id uuid.UUID, currency *string) (*domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// ApplyBalanceDelta performs the conditional balance mutation. Credits are
	// unconditional; debits carry the "balance >= amount" guard inside the
	// same UPDATE statement. A nil account with nil error means zero rows
	// matched (insufficient funds on debit, or the account vanished).
	ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal, credit bool) (*domain.Account, error)
}

// TransactionRepository defines persistence operations for the transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error
	// List returns transactions belonging to the user's accounts, most recent
	// first, with the total matching count.
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
// All filters apply on top of the mandatory owner scope.
type TransactionListParams struct {
	UserID    uuid.UUID
	AccountID *uuid.UUID
	Type      *domain.TransactionType
	Status    *domain.TransactionStatus
	Offset    int64
	Limit     int64
}

// DBTransactor begins database transactions for multi-statement operations.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
