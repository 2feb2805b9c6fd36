package handlers

import (
	"strconv"

	"github.com/atelierhq/atelierflow/backend/internal/middleware"
	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(db *gorm.DB) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: services.NewWorkspaceService(db),
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// Create creates a workspace with its default teams and general channel
// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req services.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	workspace, err := h.workspaceService.Create(&req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workspace)
}

// GetByID returns a workspace with teams and channels
// GET /api/workspaces/:id
func (h *WorkspaceHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workspace)
}

// GetByProject returns the workspace attached to a project
// GET /api/projects/:id/workspace
func (h *WorkspaceHandler) GetByProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.GetByProject(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workspace)
}

// AddMember adds a member (human or automated) to a team
// POST /api/teams/:id/members
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.workspaceService.AddMember(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// CreateChannel creates a channel in the workspace
// POST /api/workspaces/:id/channels
func (h *WorkspaceHandler) CreateChannel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	channel, err := h.workspaceService.CreateChannel(id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, channel)
}

type addChannelMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AddChannelMember adds a user to a channel's member list
// POST /api/channels/:id/members
func (h *WorkspaceHandler) AddChannelMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req addChannelMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	channel, err := h.workspaceService.AddChannelMember(id, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, channel)
}

// AssignAgent attaches an automated member to a channel
// POST /api/channels/:id/agents
func (h *WorkspaceHandler) AssignAgent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	assignment, err := h.workspaceService.AssignAgent(id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Archive soft-deletes a workspace with its teams and channels
// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Archive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.workspaceService.Archive(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "workspace archived"})
}
