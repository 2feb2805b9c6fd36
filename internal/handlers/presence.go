package handlers

import (
	"github.com/atelierhq/atelierflow/backend/internal/middleware"
	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	presenceService *services.PresenceService
}

func NewPresenceHandler(presenceService *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// Update upserts the caller's presence in a thread
// PUT /api/threads/:id/presence
func (h *PresenceHandler) Update(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	snapshot := h.presenceService.UpdatePresence(threadID, userID, &req)
	response.Success(c, snapshot)
}

// GetStatus returns the thread's presence snapshot
// GET /api/threads/:id/presence
func (h *PresenceHandler) GetStatus(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}

	snapshot, found := h.presenceService.GetStatus(threadID)
	if !found {
		response.Success(c, services.ThreadPresence{ThreadID: threadID})
		return
	}
	response.Success(c, snapshot)
}
