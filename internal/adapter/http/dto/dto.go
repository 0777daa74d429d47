package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateUserRequest is the request body for user registration.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is the request body for a partial user update.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8,max=128"`
}

// UserResponse is the response body for user endpoints.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// CreateAccountRequest is the request body for account creation.
type CreateAccountRequest struct {
	Currency       *string          `json:"currency,omitempty" binding:"omitempty,currency_code"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
}

// UpdateAccountRequest is the request body for an account update.
type UpdateAccountRequest struct {
	Currency *string `json:"currency,omitempty" binding:"omitempty,currency_code"`
}

// AccountResponse is the response body for account endpoints.
type AccountResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MutationRequest is the request body for deposits and withdrawals. The
// target account comes from the URL path.
type MutationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=255"`
}

// CreateTransactionRequest is the request body for a standalone transaction record.
type CreateTransactionRequest struct {
	AccountID   uuid.UUID       `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"transaction_type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=255"`
}

// UpdateTransactionStatusRequest is the request body for a status override.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING COMPLETED FAILED"`
}

// TransactionResponse is the response body for transaction endpoints.
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"transaction_type"`
	Status      string          `json:"status"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PageQuery holds the pagination query parameters shared by list endpoints.
type PageQuery struct {
	Page    int64 `form:"page" binding:"omitempty,min=1"`
	PerPage int64 `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// ListAccountsQuery holds query parameters for the account listing.
// Ids arrive as strings; handlers parse them into UUIDs.
type ListAccountsQuery struct {
	PageQuery
	UserID *string `form:"user_id" binding:"omitempty,uuid"`
}

// ListTransactionsQuery holds query parameters for the transaction listing.
type ListTransactionsQuery struct {
	PageQuery
	AccountID *string `form:"account_id" binding:"omitempty,uuid"`
	Type      *string `form:"type" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	Status    *string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
}
