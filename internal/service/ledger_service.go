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

// LedgerServiceImpl implements ports.LedgerService. Every balance mutation
// runs as one database transaction containing the transaction record, the
// conditional balance update, and the terminal status, so the ledger never
// holds a COMPLETED record without its delta or vice versa.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Deposit credits the account and records a DEPOSIT transaction.
// Credits are never rejected for insufficiency.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, callerID uuid.UUID, req ports.MutationRequest) (*domain.Account, error) {
	return s.mutate(ctx, callerID, req, domain.TransactionTypeDeposit)
}

// Withdraw debits the account and records a WITHDRAWAL transaction. The
// sufficiency check rides inside the conditional UPDATE, never as a prior
// application-side read, so racing withdrawals cannot jointly overdraw.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, callerID uuid.UUID, req ports.MutationRequest) (*domain.Account, error) {
	return s.mutate(ctx, callerID, req, domain.TransactionTypeWithdrawal)
}

func (s *LedgerServiceImpl) mutate(ctx context.Context, callerID uuid.UUID, req ports.MutationRequest, txType domain.TransactionType) (*domain.Account, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.OwnedBy(callerID) {
		return nil, apperror.ErrAuth("Not the account owner")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        txType,
		Status:      domain.TransactionStatusPending,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	credit := txType == domain.TransactionTypeDeposit
	updated, err := s.accountRepo.ApplyBalanceDelta(ctx, dbTx, req.AccountID, req.Amount, credit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("apply balance delta: %w", err))
	}

	if updated == nil {
		// Zero rows matched. The record must still reflect the real outcome,
		// so the FAILED status commits together with the untouched balance.
		if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusFailed); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("mark transaction failed: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}

		if credit {
			// The account existed moments ago; a credit can only miss if it
			// was deleted concurrently.
			return nil, apperror.ErrNotFound("Account")
		}

		s.log.Info().
			Str("tx_id", txn.ID.String()).
			Str("account_id", req.AccountID.String()).
			Str("amount", req.Amount.String()).
			Msg("withdrawal rejected: insufficient balance")

		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusCompleted); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark transaction completed: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("account_id", req.AccountID.String()).
		Str("type", string(txType)).
		Str("amount", req.Amount.String()).
		Str("balance", updated.Balance.String()).
		Msg("balance mutation applied")

	return updated, nil
}

// CreateTransaction records a standalone PENDING transaction with no balance
// effect, after verifying the caller owns the referenced account.
func (s *LedgerServiceImpl) CreateTransaction(ctx context.Context, callerID uuid.UUID, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Type.Valid() {
		return nil, apperror.Validation("Invalid transaction type")
	}

	if _, err := s.ownedAccount(ctx, callerID, req.AccountID); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        req.Type,
		Status:      domain.TransactionStatusPending,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return txn, nil
}

// GetTransaction fetches a transaction, owner-only.
func (s *LedgerServiceImpl) GetTransaction(ctx context.Context, callerID, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}

	if _, err := s.ownedAccount(ctx, callerID, txn.AccountID); err != nil {
		return nil, err
	}

	return txn, nil
}

// UpdateTransactionStatus is an administrative override: any valid target
// status is accepted, with no business-rule validation beyond ownership.
func (s *LedgerServiceImpl) UpdateTransactionStatus(ctx context.Context, callerID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid transaction status")
	}

	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}

	if _, err := s.ownedAccount(ctx, callerID, txn.AccountID); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.UpdateStatus(ctx, dbTx, id, status); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update transaction status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	updated, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reload transaction: %w", err))
	}
	if updated == nil {
		return nil, apperror.ErrNotFound("Transaction")
	}
	return updated, nil
}

// ListTransactions lists the caller's transactions, filterable by account,
// direction, and status, most recent first.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, callerID uuid.UUID, req ports.ListTransactionsRequest) ([]domain.Transaction, error) {
	if req.AccountID != nil {
		if _, err := s.ownedAccount(ctx, callerID, *req.AccountID); err != nil {
			return nil, err
		}
	}

	txns, _, err := s.txRepo.List(ctx, ports.TransactionListParams{
		UserID:    callerID,
		AccountID: req.AccountID,
		Type:      req.Type,
		Status:    req.Status,
		Offset:    req.Page.Offset(),
		Limit:     req.Page.Limit(),
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ownedAccount fetches an account and enforces ownership.
func (s *LedgerServiceImpl) ownedAccount(ctx context.Context, callerID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
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
