package handler

import (
	"context"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles account endpoints, including the deposit and
// withdraw mutations nested under an account.
type AccountHandler struct {
	accountSvc ports.AccountService
	ledgerSvc  ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService, ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, ledgerSvc: ledgerSvc}
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.accountSvc.Create(c.Request.Context(), callerID, ports.CreateAccountRequest{
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// Get handles GET /accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid account id"))
		return
	}

	account, err := h.accountSvc.Get(c.Request.Context(), callerID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// List handles GET /accounts.
func (h *AccountHandler) List(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var q dto.ListAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var filterUserID *uuid.UUID
	if q.UserID != nil {
		parsed, err := uuid.Parse(*q.UserID)
		if err != nil {
			response.Error(c, apperror.Validation("Invalid user_id filter"))
			return
		}
		filterUserID = &parsed
	}

	accounts, err := h.accountSvc.List(c.Request.Context(), callerID, filterUserID,
		ports.Page{Number: q.Page, PerPage: q.PerPage})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}
	response.OK(c, resp)
}

// Update handles PUT /accounts/:id.
func (h *AccountHandler) Update(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid account id"))
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.accountSvc.Update(c.Request.Context(), callerID, id, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// Delete handles DELETE /accounts/:id.
func (h *AccountHandler) Delete(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid account id"))
		return
	}

	if err := h.accountSvc.Delete(c.Request.Context(), callerID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Deposit handles POST /accounts/:id/deposit.
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.mutate(c, h.ledgerSvc.Deposit)
}

// Withdraw handles POST /accounts/:id/withdraw.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.mutate(c, h.ledgerSvc.Withdraw)
}

func (h *AccountHandler) mutate(c *gin.Context, op func(ctx context.Context, callerID uuid.UUID, req ports.MutationRequest) (*domain.Account, error)) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid account id"))
		return
	}

	var req dto.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := op(c.Request.Context(), callerID, ports.MutationRequest{
		AccountID:   id,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Balance:   a.Balance,
		Currency:  a.Currency,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
