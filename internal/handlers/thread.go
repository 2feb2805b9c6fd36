package handlers

import (
	"github.com/atelierhq/atelierflow/backend/internal/middleware"
	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ThreadHandler struct {
	threadService *services.ThreadService
}

func NewThreadHandler(db *gorm.DB, events *services.EventHub) *ThreadHandler {
	return &ThreadHandler{
		threadService: services.NewThreadService(db, events),
	}
}

// Create opens a thread in a channel
// POST /api/channels/:id/threads
func (h *ThreadHandler) Create(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	thread, err := h.threadService.CreateThread(channelID, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, thread)
}

// List returns a channel's threads, pinned first
// GET /api/channels/:id/threads
func (h *ThreadHandler) List(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}

	threads, err := h.threadService.ListThreads(channelID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, threads)
}

// GetByID returns a thread
// GET /api/threads/:id
func (h *ThreadHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	thread, err := h.threadService.GetThread(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}

// SendMessage appends a message to a thread
// POST /api/threads/:id/messages
func (h *ThreadHandler) SendMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.threadService.SendMessage(id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// ListMessages returns a thread's messages in display order
// GET /api/threads/:id/messages
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	messages, err := h.threadService.ListMessages(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditMessage replaces a message's content
// PUT /api/messages/:id
func (h *ThreadHandler) EditMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	msg, err := h.threadService.EditMessage(id, req.Content, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

type reactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// AddReaction records an emoji reaction on a message
// POST /api/messages/:id/reactions
func (h *ThreadHandler) AddReaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.threadService.AddReaction(id, req.Emoji, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "reaction added"})
}

// RemoveReaction deletes the caller's reaction
// DELETE /api/messages/:id/reactions
func (h *ThreadHandler) RemoveReaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.threadService.RemoveReaction(id, req.Emoji, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "reaction removed"})
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// SetPinned pins or unpins a thread
// PUT /api/threads/:id/pin
func (h *ThreadHandler) SetPinned(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	thread, err := h.threadService.SetPinned(id, req.Pinned, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}

// Resolve marks a thread resolved
// PUT /api/threads/:id/resolve
func (h *ThreadHandler) Resolve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	thread, err := h.threadService.Resolve(id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}

// Archive marks a thread archived
// PUT /api/threads/:id/archive
func (h *ThreadHandler) Archive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	thread, err := h.threadService.Archive(id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}
