package handler

import (
	"net/http"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the transaction log endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.CreateTransaction(c.Request.Context(), callerID, ports.CreateTransactionRequest{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        domain.TransactionType(req.Type),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// Get handles GET /transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid transaction id"))
		return
	}

	txn, err := h.ledgerSvc.GetTransaction(c.Request.Context(), callerID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// List handles GET /transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var q dto.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	req := ports.ListTransactionsRequest{
		Page: ports.Page{Number: q.Page, PerPage: q.PerPage},
	}
	if q.AccountID != nil {
		parsed, err := uuid.Parse(*q.AccountID)
		if err != nil {
			response.Error(c, apperror.Validation("Invalid account_id filter"))
			return
		}
		req.AccountID = &parsed
	}
	if q.Type != nil {
		txType := domain.TransactionType(*q.Type)
		req.Type = &txType
	}
	if q.Status != nil {
		status := domain.TransactionStatus(*q.Status)
		req.Status = &status
	}

	txns, err := h.ledgerSvc.ListTransactions(c.Request.Context(), callerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		resp = append(resp, toTransactionResponse(&txns[i]))
	}
	response.OK(c, resp)
}

// UpdateStatus handles PUT /transactions/:id/status.
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	callerID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid transaction id"))
		return
	}

	var req dto.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledgerSvc.UpdateTransactionStatus(c.Request.Context(), callerID, id, domain.TransactionStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// HealthCheck returns a handler reporting the status of each dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
