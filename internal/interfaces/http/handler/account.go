package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/firecash/backend/internal/application/ledger"
)

// AccountHandler serves account endpoints
type AccountHandler struct {
	BaseHandler
	service *appledger.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service *appledger.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req appledger.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	account, err := h.service.CreateAccount(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accounts, err := h.service.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Get handles GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accountID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	account, err := h.service.GetAccount(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Update handles PUT /api/v1/accounts/:id
func (h *AccountHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accountID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appledger.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	account, err := h.service.UpdateAccount(c.Request.Context(), userID, accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Delete handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accountID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID, accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
