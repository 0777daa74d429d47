package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/service"
	"ledger-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture(t *testing.T) (ports.LedgerService, *inMemoryAccountRepo, *inMemoryTransactionRepo, uuid.UUID, uuid.UUID) {
	t.Helper()

	accountRepo := newInMemoryAccountRepo()
	txRepo := newInMemoryTransactionRepo(accountRepo)
	transactor := newInMemoryTransactor()
	log := logger.New("error", false)

	userID := uuid.New()
	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.NewFromInt(100),
		Currency:  domain.DefaultCurrency,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, accountRepo.Create(context.Background(), account))

	svc := service.NewLedgerService(accountRepo, txRepo, transactor, log)
	return svc, accountRepo, txRepo, userID, account.ID
}

// Two concurrent withdrawals of 60 against a balance of 100: exactly one may
// win, and the loser must leave both the balance and a FAILED record behind.
func TestConcurrency_CompetingWithdrawals(t *testing.T) {
	svc, accountRepo, txRepo, userID, accountID := newLedgerFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Withdraw(context.Background(), userID, ports.MutationRequest{
				AccountID: accountID,
				Amount:    decimal.NewFromInt(60),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one withdrawal may win")

	account, err := accountRepo.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(40)),
		"final balance should be 40, got %s", account.Balance)

	txns, total, err := txRepo.List(context.Background(), ports.TransactionListParams{
		UserID: userID,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var completed, failed int
	for _, txn := range txns {
		switch txn.Status {
		case domain.TransactionStatusCompleted:
			completed++
		case domain.TransactionStatusFailed:
			failed++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
}

// Many concurrent deposits must all land; the balance is their exact sum.
func TestConcurrency_ParallelDeposits(t *testing.T) {
	svc, accountRepo, _, userID, accountID := newLedgerFixture(t)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(context.Background(), userID, ports.MutationRequest{
				AccountID: accountID,
				Amount:    decimal.NewFromInt(3),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := accountRepo.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, account)

	want := decimal.NewFromInt(100 + workers*3)
	assert.True(t, account.Balance.Equal(want),
		"balance should be %s, got %s", want, account.Balance)
}

// Mixed deposits and withdrawals that can all be funded must never deadlock
// or lose an update.
func TestConcurrency_MixedTraffic(t *testing.T) {
	svc, accountRepo, _, userID, accountID := newLedgerFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(context.Background(), userID, ports.MutationRequest{
				AccountID: accountID,
				Amount:    decimal.NewFromInt(5),
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(context.Background(), userID, ports.MutationRequest{
				AccountID: accountID,
				Amount:    decimal.NewFromInt(1),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := accountRepo.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, account)

	// 100 + 20*5 - 20*1
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(180)),
		"balance should be 180, got %s", account.Balance)
}
