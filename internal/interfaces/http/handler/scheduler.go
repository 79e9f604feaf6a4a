package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/firecash/backend/internal/infrastructure/scheduler"
)

// SchedulerHandler exposes scheduler status and a manual trigger for ops
type SchedulerHandler struct {
	BaseHandler
	scheduler *scheduler.ObligationScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(s *scheduler.ObligationScheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// Status handles GET /api/v1/scheduler/status
func (h *SchedulerHandler) Status(c *gin.Context) {
	h.Success(c, h.scheduler.GetStatus())
}

// Trigger handles POST /api/v1/scheduler/run
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	fired, err := h.scheduler.TriggerManualRun(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"fired": fired})
}
