package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// TransactionStatus is the lifecycle state of a transaction.
// PENDING moves to COMPLETED once the balance delta is applied, or to
// FAILED when it could not be. COMPLETED and FAILED are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is a ledger entry recording one deposit or withdrawal
// against an account. Amount is always the unsigned magnitude; the
// direction lives in Type.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	AccountID   uuid.UUID         `json:"account_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"transaction_type"`
	Status      TransactionStatus `json:"status"`
	Description *string           `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
