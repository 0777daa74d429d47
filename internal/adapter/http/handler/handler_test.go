package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/adapter/http/middleware"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/core/ports/mocks"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authedContext(t *testing.T, method, target string, body []byte, userID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, userID)
	return c, w
}

// --- User Handler Tests ---

func TestUserRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUsers)

	userID := uuid.New()
	mockUsers.EXPECT().Register(gomock.Any(), ports.RegisterUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	}).Return(&domain.User{ID: userID, Name: "Alice", Email: "alice@example.com"}, nil)

	body, _ := json.Marshal(dto.CreateUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUserRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewUserHandler(mocks.NewMockUserService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"email":"not-an-email"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestUserLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUsers)

	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
	expiry := time.Now().Add(24 * time.Hour)
	mockUsers.EXPECT().Login(gomock.Any(), "alice@example.com", "password123").
		Return(&ports.LoginResult{Token: "signed-token", Expiry: expiry, User: user}, nil)

	body, _ := json.Marshal(dto.LoginRequest{Email: "alice@example.com", Password: "password123"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, expiry.Unix(), resp.Expiry)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestUserLogin_BadCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUsers)

	mockUsers.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AUTH_FAILED", resp.Error.Code)
}

func TestUserDelete_NoContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUsers)

	userID := uuid.New()
	mockUsers.EXPECT().Delete(gomock.Any(), userID, userID).Return(nil)

	c, w := authedContext(t, http.MethodDelete, "/users/"+userID.String(), nil, userID)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}

	h.Delete(c)
	// gin defers header writes until the engine flushes after the handler
	// chain; with a bare test context we must flush explicitly.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

// --- Account Handler Tests ---

func TestAccountCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccounts := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockAccounts, mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	accountID := uuid.New()
	mockAccounts.EXPECT().Create(gomock.Any(), userID, gomock.Any()).
		Return(&domain.Account{ID: accountID, UserID: userID, Balance: decimal.Zero, Currency: "INR"}, nil)

	c, w := authedContext(t, http.MethodPost, "/accounts", []byte(`{}`), userID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, accountID, resp.ID)
	assert.Equal(t, "INR", resp.Currency)
}

func TestAccountCreate_BadCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAccountHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockLedgerService(ctrl))

	c, w := authedContext(t, http.MethodPost, "/accounts", []byte(`{"currency":"rupees"}`), uuid.New())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountGet_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAccountHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockLedgerService(ctrl))

	c, w := authedContext(t, http.MethodGet, "/accounts/nope", nil, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountService(ctrl), mockLedger)

	userID := uuid.New()
	accountID := uuid.New()
	amount := decimal.RequireFromString("25.50")

	mockLedger.EXPECT().Deposit(gomock.Any(), userID, gomock.Any()).DoAndReturn(
		func(_ any, _ uuid.UUID, req ports.MutationRequest) (*domain.Account, error) {
			assert.Equal(t, accountID, req.AccountID)
			assert.True(t, req.Amount.Equal(amount))
			return &domain.Account{ID: accountID, UserID: userID, Balance: amount, Currency: "INR"}, nil
		})

	c, w := authedContext(t, http.MethodPost, "/accounts/"+accountID.String()+"/deposit",
		[]byte(`{"amount":"25.50"}`), userID)
	c.Params = gin.Params{{Key: "id", Value: accountID.String()}}

	h.Deposit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Balance.Equal(amount))
}

func TestAccountWithdraw_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountService(ctrl), mockLedger)

	userID := uuid.New()
	accountID := uuid.New()
	mockLedger.EXPECT().Withdraw(gomock.Any(), userID, gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	c, w := authedContext(t, http.MethodPost, "/accounts/"+accountID.String()+"/withdraw",
		[]byte(`{"amount":"1000"}`), userID)
	c.Params = gin.Params{{Key: "id", Value: accountID.String()}}

	h.Withdraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

// --- Transaction Handler Tests ---

func TestTransactionList_ForwardsFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	accountID := uuid.New()

	mockLedger.EXPECT().ListTransactions(gomock.Any(), userID, gomock.Any()).DoAndReturn(
		func(_ any, _ uuid.UUID, req ports.ListTransactionsRequest) ([]domain.Transaction, error) {
			require.NotNil(t, req.AccountID)
			assert.Equal(t, accountID, *req.AccountID)
			require.NotNil(t, req.Type)
			assert.Equal(t, domain.TransactionTypeDeposit, *req.Type)
			assert.Equal(t, int64(2), req.Page.Number)
			return []domain.Transaction{{ID: uuid.New(), AccountID: accountID}}, nil
		})

	c, w := authedContext(t, http.MethodGet,
		"/transactions?account_id="+accountID.String()+"&type=DEPOSIT&page=2", nil, userID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestTransactionUpdateStatus_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	txnID := uuid.New()
	mockLedger.EXPECT().UpdateTransactionStatus(gomock.Any(), userID, txnID, domain.TransactionStatusCompleted).
		Return(&domain.Transaction{ID: txnID, Status: domain.TransactionStatusCompleted}, nil)

	c, w := authedContext(t, http.MethodPut, "/transactions/"+txnID.String()+"/status",
		[]byte(`{"status":"COMPLETED"}`), userID)
	c.Params = gin.Params{{Key: "id", Value: txnID.String()}}

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "COMPLETED", resp.Status)
}

func TestTransactionUpdateStatus_BadStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	txnID := uuid.New()
	c, w := authedContext(t, http.MethodPut, "/transactions/"+txnID.String()+"/status",
		[]byte(`{"status":"CANCELLED"}`), uuid.New())
	c.Params = gin.Params{{Key: "id", Value: txnID.String()}}

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Router Tests ---

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := SetupRouter(RouterDeps{
		UserSvc:    mocks.NewMockUserService(ctrl),
		AccountSvc: mocks.NewMockAccountService(ctrl),
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		TokenSvc:   mocks.NewMockTokenService(ctrl),
		Logger:     zerolog.Nop(),
	})

	for _, target := range []string{"/accounts", "/transactions", "/users"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, target)

		var resp response.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "AUTH_FAILED", resp.Error.Code)
	}
}

func TestRouter_PublicRoutesSkipAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserService(ctrl)
	mockUsers.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidCredentials())

	router := SetupRouter(RouterDeps{
		UserSvc:    mockUsers,
		AccountSvc: mocks.NewMockAccountService(ctrl),
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		TokenSvc:   mocks.NewMockTokenService(ctrl),
		Logger:     zerolog.Nop(),
	})

	body := []byte(`{"email":"alice@example.com","password":"whatever1"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Reached the handler (credential failure), not the auth middleware.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := SetupRouter(RouterDeps{
		UserSvc:    mocks.NewMockUserService(ctrl),
		AccountSvc: mocks.NewMockAccountService(ctrl),
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		TokenSvc:   mocks.NewMockTokenService(ctrl),
		Logger:     zerolog.Nop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
