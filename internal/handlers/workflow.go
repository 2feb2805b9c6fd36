package handlers

import (
	"strconv"

	"github.com/atelierhq/atelierflow/backend/internal/middleware"
	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/internal/services"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WorkflowHandler struct {
	workflowService *services.WorkflowService
}

func NewWorkflowHandler(db *gorm.DB, events *services.EventHub) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: services.NewWorkflowService(db, events),
	}
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateProject provisions a project with its four phases
// POST /api/projects
func (h *WorkflowHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	project, err := h.workflowService.CreateProject(req.Name, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// GetProject returns a project
// GET /api/projects/:id
func (h *WorkflowHandler) GetProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	project, err := h.workflowService.GetProject(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// ListPhases returns a project's phases in delivery order
// GET /api/projects/:id/phases
func (h *WorkflowHandler) ListPhases(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	phases, err := h.workflowService.ListPhases(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, phases)
}

// MarkPhaseReview moves the named phase into review
// PUT /api/projects/:id/phases/:phase/review
func (h *WorkflowHandler) MarkPhaseReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	phaseName := models.PhaseName(c.Param("phase"))

	userID := middleware.GetUserID(c)
	phase, err := h.workflowService.MarkPhaseReview(id, phaseName, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, phase)
}

// StartPhase manually starts a not-yet-started phase
// PUT /api/projects/:id/phases/:phase/start
func (h *WorkflowHandler) StartPhase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	phaseName := models.PhaseName(c.Param("phase"))

	userID := middleware.GetUserID(c)
	phase, err := h.workflowService.StartPhase(id, phaseName, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, phase)
}

// CompletePhase finishes the current phase and starts the next
// PUT /api/projects/:id/phases/:phase/complete
func (h *WorkflowHandler) CompletePhase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	phaseName := models.PhaseName(c.Param("phase"))

	userID := middleware.GetUserID(c)
	project, err := h.workflowService.CompletePhase(id, phaseName, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// InitializeArtifacts bulk-creates draft artifacts for a phase
// POST /api/projects/:id/phases/:phase/artifacts/initialize
func (h *WorkflowHandler) InitializeArtifacts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	phaseName := models.PhaseName(c.Param("phase"))

	userID := middleware.GetUserID(c)
	artifacts, err := h.workflowService.InitializePhaseArtifacts(id, phaseName, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, artifacts)
}

// CreateArtifact adds a deliverable to a phase
// POST /api/projects/:id/artifacts
func (h *WorkflowHandler) CreateArtifact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	artifact, err := h.workflowService.CreateArtifact(id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, artifact)
}

// ListArtifacts returns a project's artifacts, optionally for one phase
// GET /api/projects/:id/artifacts?phase_id=N
func (h *WorkflowHandler) ListArtifacts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var phaseID uint
	if v := c.Query("phase_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid phase_id")
			return
		}
		phaseID = uint(parsed)
	}

	artifacts, err := h.workflowService.ListArtifacts(id, phaseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, artifacts)
}

// GetArtifact returns an artifact
// GET /api/artifacts/:id
func (h *WorkflowHandler) GetArtifact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	artifact, err := h.workflowService.GetArtifact(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, artifact)
}

// UpdateArtifact edits an artifact's fields
// PUT /api/artifacts/:id
func (h *WorkflowHandler) UpdateArtifact(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	artifact, err := h.workflowService.UpdateArtifact(id, &req, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, artifact)
}

type updateArtifactStatusRequest struct {
	Status models.ArtifactStatus `json:"status" binding:"required"`
}

// UpdateArtifactStatus moves an artifact to any status
// PUT /api/artifacts/:id/status
func (h *WorkflowHandler) UpdateArtifactStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateArtifactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	artifact, err := h.workflowService.UpdateArtifactStatus(id, req.Status, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, artifact)
}
