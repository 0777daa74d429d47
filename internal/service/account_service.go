package service

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	log         zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(accountRepo ports.AccountRepository, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{accountRepo: accountRepo, log: log}
}

// Create opens an account for the caller. Currency defaults to INR and the
// opening balance to zero; a negative opening balance is rejected.
func (s *AccountServiceImpl) Create(ctx context.Context, callerID uuid.UUID, req ports.CreateAccountRequest) (*domain.Account, error) {
	currency := domain.DefaultCurrency
	if req.Currency != nil {
		currency = *req.Currency
	}

	balance := decimal.Zero
	if req.InitialBalance != nil {
		if req.InitialBalance.IsNegative() {
			return nil, apperror.Validation("Initial balance cannot be negative")
		}
		balance = *req.InitialBalance
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    callerID,
		Balance:   balance,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("user_id", callerID.String()).
		Str("currency", currency).
		Msg("account created")

	return account, nil
}

// Get fetches an account, owner-only.
func (s *AccountServiceImpl) Get(ctx context.Context, callerID, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.OwnedBy(callerID) {
		return nil, apperror.ErrAuth("Not the account owner")
	}
	return account, nil
}

// List returns the caller's accounts. A user_id filter naming anyone but the
// caller is rejected rather than silently narrowed.
func (s *AccountServiceImpl) List(ctx context.Context, callerID uuid.UUID, filterUserID *uuid.UUID, page ports.Page) ([]domain.Account, error) {
	if filterUserID != nil && *filterUserID != callerID {
		return nil, apperror.ErrAuth("Cannot list another user's accounts")
	}

	accounts, err := s.accountRepo.ListByUser(ctx, callerID, page.Offset(), page.Limit())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// Update changes the account currency, owner-only. A nil currency keeps the
// stored value.
func (s *AccountServiceImpl) Update(ctx context.Context, callerID, id uuid.UUID, currency *string) (*domain.Account, error) {
	if _, err := s.Get(ctx, callerID, id); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.UpdateCurrency(ctx, id, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// Delete removes an account, owner-only.
func (s *AccountServiceImpl) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, callerID, id); err != nil {
		return err
	}

	deleted, err := s.accountRepo.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete account: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("Account")
	}

	s.log.Info().Str("account_id", id.String()).Msg("account deleted")
	return nil
}
