package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/firecash/backend/internal/application/ledger"
)

// ObligationHandler serves recurring obligation endpoints
type ObligationHandler struct {
	BaseHandler
	service *appledger.ObligationService
}

// NewObligationHandler creates a new ObligationHandler
func NewObligationHandler(service *appledger.ObligationService) *ObligationHandler {
	return &ObligationHandler{service: service}
}

// Create handles POST /api/v1/obligations
func (h *ObligationHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req appledger.CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	obligation, err := h.service.CreateObligation(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, obligation)
}

// ListByAccount handles GET /api/v1/accounts/:id/obligations
func (h *ObligationHandler) ListByAccount(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	accountID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	obligations, err := h.service.ListObligations(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, obligations)
}

// Update handles PUT /api/v1/obligations/:id
func (h *ObligationHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	obligationID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appledger.UpdateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	obligation, err := h.service.UpdateObligation(c.Request.Context(), userID, obligationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, obligation)
}

// Skip handles POST /api/v1/obligations/:id/skip. Skipping advances the
// next occurrence by one interval without writing a ledger entry.
func (h *ObligationHandler) Skip(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	obligationID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	obligation, err := h.service.SkipObligation(c.Request.Context(), userID, obligationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, obligation)
}

// Delete handles DELETE /api/v1/obligations/:id
func (h *ObligationHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	obligationID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteObligation(c.Request.Context(), userID, obligationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
