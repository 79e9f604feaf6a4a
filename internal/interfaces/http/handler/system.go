package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firecash/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports liveness
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready reports readiness, checking the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse(dto.ErrCodeTransient, "Database unreachable"))
		return
	}
	h.Success(c, gin.H{"status": "ready"})
}
