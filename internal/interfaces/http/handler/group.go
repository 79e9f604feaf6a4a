package handler

import (
	"github.com/gin-gonic/gin"

	appsharing "github.com/firecash/backend/internal/application/sharing"
)

// GroupHandler serves group and membership endpoints
type GroupHandler struct {
	BaseHandler
	service *appsharing.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(service *appsharing.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// Create handles POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req appsharing.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	group, err := h.service.CreateGroup(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, group)
}

// List handles GET /api/v1/groups
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groups, err := h.service.ListGroups(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, groups)
}

// Get handles GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	group, err := h.service.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// Update handles PUT /api/v1/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appsharing.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	group, err := h.service.UpdateGroup(c.Request.Context(), userID, groupID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// Delete handles DELETE /api/v1/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMembers handles GET /api/v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.service.ListMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// AddMember handles POST /api/v1/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appsharing.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	member, err := h.service.AddMember(c.Request.Context(), userID, groupID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// UpdateMember handles PUT /api/v1/groups/:id/members/:userId
func (h *GroupHandler) UpdateMember(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.ParseUUIDParam(c, "userId")
	if !ok {
		return
	}
	var req appsharing.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := h.service.UpdateMemberRole(c.Request.Context(), userID, groupID, memberID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"user_id": memberID, "role": req.Role})
}

// RemoveMember handles DELETE /api/v1/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	groupID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.ParseUUIDParam(c, "userId")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
