package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) Update(ctx context.Context, id uuid.UUID, params ports.UserUpdateParams) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Email != nil {
		u.Email = *params.Email
	}
	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *inMemoryUserRepo) List(ctx context.Context, offset, limit int64) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, offset, limit), nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int64) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, offset, limit), nil
}

func (r *inMemoryAccountRepo) UpdateCurrency(ctx context.Context, id uuid.UUID, currency *string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	if currency != nil {
		a.Currency = *currency
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return false, nil
	}
	delete(r.accounts, id)
	return true, nil
}

// ApplyBalanceDelta mirrors the conditional UPDATE: the sufficiency check and
// the mutation happen under one lock, so concurrent debits cannot both pass.
func (r *inMemoryAccountRepo) ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal, credit bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	if credit {
		a.Balance = a.Balance.Add(amount)
	} else {
		if a.Balance.LessThan(amount) {
			return nil, nil
		}
		a.Balance = a.Balance.Sub(amount)
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	accounts     *inMemoryAccountRepo
}

func newInMemoryTransactionRepo(accounts *inMemoryAccountRepo) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		accounts:     accounts,
	}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return fmt.Errorf("transaction not found")
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		account, _ := r.accounts.GetByID(ctx, t.AccountID)
		if account == nil || account.UserID != params.UserID {
			continue
		}
		if params.AccountID != nil && t.AccountID != *params.AccountID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	return paginate(result, params.Offset, params.Limit), total, nil
}

func paginate[T any](items []T, offset, limit int64) []T {
	if offset >= int64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[offset:end]
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
