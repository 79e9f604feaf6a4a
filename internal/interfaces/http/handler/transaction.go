package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/firecash/backend/internal/application/ledger"
	"github.com/firecash/backend/internal/interfaces/http/dto"
)

// TransactionHandler serves ledger entry endpoints
type TransactionHandler struct {
	BaseHandler
	service *appledger.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *appledger.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req appledger.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	transaction, err := h.service.CreateTransaction(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transaction)
}

// ListByAccount handles GET /api/v1/accounts/:id/transactions
func (h *TransactionHandler) ListByAccount(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accountID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	transactions, err := h.service.ListTransactions(c.Request.Context(), userID, accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transactions, dto.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Count:  len(transactions),
	})
}

// Update handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	transactionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appledger.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	transaction, err := h.service.UpdateTransaction(c.Request.Context(), userID, transactionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transaction)
}

// Delete handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	transactionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
