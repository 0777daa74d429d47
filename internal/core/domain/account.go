package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when account creation omits a currency code.
const DefaultCurrency = "INR"

// Account holds a user's balance in a single currency. The balance is an
// exact decimal and never goes negative; it is mutated only through the
// ledger service's balance-update path.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OwnedBy reports whether the account belongs to the given user.
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}
