package handlers

import (
	"strconv"
	"time"

	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type GenerationHandler struct {
	generationService *services.GenerationService
}

func NewGenerationHandler(generationService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// GenerateMessage inserts a generating placeholder and dispatches the
// provider call. The placeholder is returned immediately.
// POST /api/threads/:id/generate
func (h *GenerationHandler) GenerateMessage(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.GenerateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.generationService.GenerateAIMessage(threadID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// GenerateUI produces a declarative UI component attachment in one shot
// POST /api/threads/:id/generate-ui
func (h *GenerationHandler) GenerateUI(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.GenerateUIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	agentID, err := strconv.ParseUint(c.Query("agent_id"), 10, 32)
	if err != nil || agentID == 0 {
		response.BadRequest(c, "agent_id query parameter required")
		return
	}

	attachment, genErr := h.generationService.GenerateUIComponent(
		c.Request.Context(), threadID, uint(agentID), &req)
	if genErr != nil {
		response.Error(c, genErr)
		return
	}
	response.Success(c, attachment)
}

// ListStuck returns placeholder messages that never finalized
// GET /api/admin/generations/stuck
func (h *GenerationHandler) ListStuck(c *gin.Context) {
	minutes := 10
	if v := c.Query("older_than_minutes"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "invalid older_than_minutes")
			return
		}
		minutes = parsed
	}

	messages, err := h.generationService.ListStuckGenerating(time.Duration(minutes) * time.Minute)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}
