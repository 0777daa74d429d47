package ports

import (
	"context"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService hashes and verifies passwords.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) (bool, error)
}

// TokenClaims is the identity resolved from a bearer token.
type TokenClaims struct {
	UserID uuid.UUID
}

// TokenService issues and validates bearer tokens.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}

// RegisterUserRequest holds input for user registration.
type RegisterUserRequest struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserRequest holds optional fields for a user update.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
}

// LoginResult is a signed token plus the authenticated user.
type LoginResult struct {
	Token  string
	Expiry time.Time
	User   *domain.User
}

// UserService manages account holders and credential issuance.
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Update and Delete are self-service: callerID must equal id.
	Update(ctx context.Context, callerID, id uuid.UUID, req UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	List(ctx context.Context, page Page) ([]domain.User, error)
}

// CreateAccountRequest holds input for account creation.
type CreateAccountRequest struct {
	Currency       *string
	InitialBalance *decimal.Decimal
}

// AccountService manages accounts with owner-only access.
type AccountService interface {
	Create(ctx context.Context, callerID uuid.UUID, req CreateAccountRequest) (*domain.Account, error)
	Get(ctx context.Context, callerID, id uuid.UUID) (*domain.Account, error)
	// List is scoped to the caller; a filterUserID naming another user is rejected.
	List(ctx context.Context, callerID uuid.UUID, filterUserID *uuid.UUID, page Page) ([]domain.Account, error)
	Update(ctx context.Context, callerID, id uuid.UUID, currency *string) (*domain.Account, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}

// MutationRequest holds input for a deposit or withdrawal.
type MutationRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description *string
}

// CreateTransactionRequest holds input for a standalone transaction record.
type CreateTransactionRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description *string
}

// ListTransactionsRequest holds filters for the transaction listing.
type ListTransactionsRequest struct {
	AccountID *uuid.UUID
	Type      *domain.TransactionType
	Status    *domain.TransactionStatus
	Page      Page
}

// LedgerService orchestrates balance mutations and the transaction log.
// Every operation requires the caller to own the target account.
type LedgerService interface {
	Deposit(ctx context.Context, callerID uuid.UUID, req MutationRequest) (*domain.Account, error)
	Withdraw(ctx context.Context, callerID uuid.UUID, req MutationRequest) (*domain.Account, error)
	CreateTransaction(ctx context.Context, callerID uuid.UUID, req CreateTransactionRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, callerID, id uuid.UUID) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, callerID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, callerID uuid.UUID, req ListTransactionsRequest) ([]domain.Transaction, error)
}

// Page is offset/limit pagination expressed as page/per_page.
type Page struct {
	Number  int64
	PerPage int64
}

// Offset returns the row offset for the page.
func (p Page) Offset() int64 {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit()
}

// Limit returns the page size, defaulting to 10.
func (p Page) Limit() int64 {
	if p.PerPage < 1 {
		return 10
	}
	return p.PerPage
}
