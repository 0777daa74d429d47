package service

import (
	"context"
	"testing"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/core/ports/mocks"
	"ledger-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	accountRepo *mocks.MockAccountRepository
	txRepo      *mocks.MockTransactionRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLedgerService(d.accountRepo, d.txRepo, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(_ context.Context) error   { m.committed = true; return nil }
func (m *mockTx) Rollback(_ context.Context) error { m.rolledBack = true; return nil }

func testAccount(ownerID uuid.UUID, balance string) *domain.Account {
	return &domain.Account{
		ID:       uuid.New(),
		UserID:   ownerID,
		Balance:  decimal.RequireFromString(balance),
		Currency: domain.DefaultCurrency,
	}
}

func TestLedgerService_Deposit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "100")
	amount := decimal.RequireFromString("25.50")
	tx := &mockTx{}

	updated := *account
	updated.Balance = decimal.RequireFromString("125.50")

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, account.ID, txn.AccountID)
			assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
			assert.Equal(t, domain.TransactionStatusPending, txn.Status)
			assert.True(t, txn.Amount.Equal(amount))
			return nil
		})
	d.accountRepo.EXPECT().ApplyBalanceDelta(ctx, tx, account.ID, amount, true).Return(&updated, nil)
	d.txRepo.EXPECT().UpdateStatus(ctx, tx, gomock.Any(), domain.TransactionStatusCompleted).Return(nil)

	got, err := d.svc.Deposit(ctx, owner, ports.MutationRequest{AccountID: account.ID, Amount: amount})
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(updated.Balance))
	assert.True(t, tx.committed)
}

func TestLedgerService_Withdraw_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "100")
	amount := decimal.RequireFromString("40")
	tx := &mockTx{}

	updated := *account
	updated.Balance = decimal.RequireFromString("60")

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.accountRepo.EXPECT().ApplyBalanceDelta(ctx, tx, account.ID, amount, false).Return(&updated, nil)
	d.txRepo.EXPECT().UpdateStatus(ctx, tx, gomock.Any(), domain.TransactionStatusCompleted).Return(nil)

	got, err := d.svc.Withdraw(ctx, owner, ports.MutationRequest{AccountID: account.ID, Amount: amount})
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(updated.Balance))
	assert.True(t, tx.committed)
}

func TestLedgerService_Withdraw_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "10")
	amount := decimal.RequireFromString("40")
	tx := &mockTx{}

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Zero rows matched the guarded UPDATE.
	d.accountRepo.EXPECT().ApplyBalanceDelta(ctx, tx, account.ID, amount, false).Return(nil, nil)
	d.txRepo.EXPECT().UpdateStatus(ctx, tx, gomock.Any(), domain.TransactionStatusFailed).Return(nil)

	got, err := d.svc.Withdraw(ctx, owner, ports.MutationRequest{AccountID: account.ID, Amount: amount})
	assert.Nil(t, got)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	// The FAILED record must be committed, not rolled back.
	assert.True(t, tx.committed)
}

func TestLedgerService_Mutate_NonPositiveAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()

	for _, amount := range []string{"0", "-5"} {
		req := ports.MutationRequest{AccountID: uuid.New(), Amount: decimal.RequireFromString(amount)}

		_, err := d.svc.Deposit(ctx, owner, req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)

		_, err = d.svc.Withdraw(ctx, owner, req)
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	}
}

func TestLedgerService_Mutate_AccountNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.accountRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Deposit(ctx, uuid.New(), ports.MutationRequest{AccountID: id, Amount: decimal.NewFromInt(10)})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestLedgerService_Mutate_NotOwner(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := testAccount(uuid.New(), "100")
	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)

	_, err := d.svc.Withdraw(ctx, uuid.New(), ports.MutationRequest{AccountID: account.ID, Amount: decimal.NewFromInt(10)})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeAuthFailed, appErr.Code)
}

func TestLedgerService_CreateTransaction_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "0")
	tx := &mockTx{}
	desc := "invoice 42"

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	txn, err := d.svc.CreateTransaction(ctx, owner, ports.CreateTransactionRequest{
		AccountID:   account.ID,
		Amount:      decimal.NewFromInt(15),
		Type:        domain.TransactionTypeDeposit,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	assert.Equal(t, &desc, txn.Description)
	assert.True(t, tx.committed)
}

func TestLedgerService_CreateTransaction_InvalidType(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.CreateTransaction(context.Background(), uuid.New(), ports.CreateTransactionRequest{
		AccountID: uuid.New(),
		Amount:    decimal.NewFromInt(15),
		Type:      domain.TransactionType("TRANSFER"),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestLedgerService_GetTransaction_OwnershipEnforced(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := testAccount(uuid.New(), "0")
	txn := &domain.Transaction{ID: uuid.New(), AccountID: account.ID, Status: domain.TransactionStatusCompleted}

	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)

	_, err := d.svc.GetTransaction(ctx, uuid.New(), txn.ID)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeAuthFailed, appErr.Code)
}

func TestLedgerService_GetTransaction_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.txRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.GetTransaction(ctx, uuid.New(), id)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestLedgerService_UpdateTransactionStatus_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "0")
	txn := &domain.Transaction{ID: uuid.New(), AccountID: account.ID, Status: domain.TransactionStatusPending}
	tx := &mockTx{}

	reloaded := *txn
	reloaded.Status = domain.TransactionStatusCompleted

	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(txn, nil)
	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted).Return(nil)
	d.txRepo.EXPECT().GetByID(ctx, txn.ID).Return(&reloaded, nil)

	got, err := d.svc.UpdateTransactionStatus(ctx, owner, txn.ID, domain.TransactionStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
	assert.True(t, tx.committed)
}

func TestLedgerService_ListTransactions_ForwardsFilters(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	account := testAccount(owner, "0")
	txType := domain.TransactionTypeWithdrawal

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.txRepo.EXPECT().List(ctx, ports.TransactionListParams{
		UserID:    owner,
		AccountID: &account.ID,
		Type:      &txType,
		Offset:    10,
		Limit:     10,
	}).Return([]domain.Transaction{{ID: uuid.New()}}, int64(1), nil)

	txns, err := d.svc.ListTransactions(ctx, owner, ports.ListTransactionsRequest{
		AccountID: &account.ID,
		Type:      &txType,
		Page:      ports.Page{Number: 2},
	})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestLedgerService_ListTransactions_ForeignAccountFilter(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := testAccount(uuid.New(), "0")
	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)

	_, err := d.svc.ListTransactions(ctx, uuid.New(), ports.ListTransactionsRequest{AccountID: &account.ID})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeAuthFailed, appErr.Code)
}
