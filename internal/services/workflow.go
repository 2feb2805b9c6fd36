package services

import (
	"errors"
	"time"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
)

// WorkflowService drives the four-phase delivery pipeline: phase lifecycle,
// forward-only transitions, and the artifacts scoped to each phase.
type WorkflowService struct {
	db          *gorm.DB
	permissions *PermissionService
	events      *EventHub
}

func NewWorkflowService(db *gorm.DB, events *EventHub) *WorkflowService {
	return &WorkflowService{
		db:          db,
		permissions: NewPermissionService(db),
		events:      events,
	}
}

type CreateArtifactRequest struct {
	PhaseID uint                `json:"phase_id" binding:"required"`
	Type    models.ArtifactType `json:"type" binding:"required"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	FileURL string              `json:"file_url"`
}

type UpdateArtifactRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	FileURL *string `json:"file_url"`
}

// memberForProject resolves the acting member through the workspace attached
// to the project.
func (s *WorkflowService) memberForProject(projectID, userID uint) (*models.Member, *models.Team, error) {
	var workspace models.Workspace
	err := s.db.Where("project_id = ?", projectID).First(&workspace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("no workspace for project")
		}
		return nil, nil, response.NewStoreFailure(err.Error())
	}
	return s.permissions.MemberByUser(workspace.ID, userID)
}

// CreateProject provisions a project with all four phases and starts the
// discovery phase. The caller becomes the project owner; permission checks
// start applying once a workspace is attached.
func (s *WorkflowService) CreateProject(name string, userID uint) (*models.Project, error) {
	now := time.Now()
	project := models.Project{
		Name:         name,
		Status:       models.ProjectActive,
		CurrentPhase: models.PhaseDiscovery,
		CreatedBy:    userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, name := range models.PhaseOrder {
			phase := models.Phase{
				ProjectID: project.ID,
				Name:      name,
				Status:    models.PhaseNotStarted,
			}
			if name == models.PhaseDiscovery {
				phase.Status = models.PhaseInProgress
				phase.StartedAt = &now
			}
			if err := tx.Create(&phase).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, response.NewStoreFailure("project not created")
	}

	logger.Infof("[Workflow] Project created: id=%d, name=%s", project.ID, name)
	return s.GetProject(project.ID)
}

// GetProject returns a project with its phases.
func (s *WorkflowService) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &project, nil
}

// ListPhases returns a project's phases in delivery order.
func (s *WorkflowService) ListPhases(projectID uint) ([]models.Phase, error) {
	var phases []models.Phase
	if err := s.db.Where("project_id = ?", projectID).Find(&phases).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	ordered := make([]models.Phase, 0, len(phases))
	for _, name := range models.PhaseOrder {
		for i := range phases {
			if phases[i].Name == name {
				ordered = append(ordered, phases[i])
			}
		}
	}
	return ordered, nil
}

func (s *WorkflowService) phaseByName(projectID uint, name models.PhaseName) (*models.Phase, error) {
	var phase models.Phase
	err := s.db.Where("project_id = ? AND name = ?", projectID, name).First(&phase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("phase not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &phase, nil
}

// MarkPhaseReview moves the current phase into review. It stays the current
// phase; completion is a separate step.
func (s *WorkflowService) MarkPhaseReview(projectID uint, name models.PhaseName, userID uint) (*models.Phase, error) {
	member, team, err := s.memberForProject(projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapAdvancePhase); err != nil {
		return nil, err
	}

	phase, err := s.phaseByName(projectID, name)
	if err != nil {
		return nil, err
	}
	if phase.Status != models.PhaseInProgress {
		return nil, response.NewInvalidState("phase is not in progress")
	}

	if err := s.db.Model(phase).Update("status", models.PhaseReview).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	phase.Status = models.PhaseReview
	return phase, nil
}

// StartPhase makes the named phase the project's current phase and stamps its
// start date. The walk is forward only: a phase earlier than the current one,
// or one already started, is rejected with no effect.
func (s *WorkflowService) StartPhase(projectID uint, name models.PhaseName, userID uint) (*models.Phase, error) {
	member, team, err := s.memberForProject(projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapAdvancePhase); err != nil {
		return nil, err
	}
	if !name.Valid() {
		return nil, response.NewBadRequest("unknown phase: " + string(name))
	}

	var phase models.Phase
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return err
		}
		if project.Status == models.ProjectCompleted {
			return response.NewInvalidState("project is already completed")
		}
		if name.Index() < project.CurrentPhase.Index() {
			return response.NewInvalidState("phase " + string(name) + " precedes the current phase")
		}

		if err := tx.Where("project_id = ? AND name = ?", projectID, name).First(&phase).Error; err != nil {
			return err
		}
		if phase.Status != models.PhaseNotStarted {
			return response.NewInvalidState("phase has already been started")
		}

		now := time.Now()
		err := tx.Model(&phase).Updates(map[string]interface{}{
			"status":     models.PhaseInProgress,
			"started_at": now,
		}).Error
		if err != nil {
			return err
		}
		phase.Status = models.PhaseInProgress
		phase.StartedAt = &now
		return tx.Model(&project).Update("current_phase", name).Error
	})
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	if s.events != nil {
		s.events.Publish(CollabEvent{
			Type:      EventPhaseChanged,
			ProjectID: projectID,
			Phase:     string(name),
			UserID:    userID,
		})
	}

	logger.Infof("[Workflow] Phase started: project=%d, phase=%s", projectID, name)
	return &phase, nil
}

// CompletePhase finishes the project's current phase and, unless it was the
// last, starts the next one. Transitions walk the fixed order forward only:
// completing a phase other than the current one, or a phase that never
// started, is rejected with no effect. Completing development completes the
// project.
func (s *WorkflowService) CompletePhase(projectID uint, name models.PhaseName, userID uint) (*models.Project, error) {
	member, team, err := s.memberForProject(projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapAdvancePhase); err != nil {
		return nil, err
	}
	if !name.Valid() {
		return nil, response.NewBadRequest("unknown phase: " + string(name))
	}

	var next models.PhaseName
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return err
		}
		if project.Status == models.ProjectCompleted {
			return response.NewInvalidState("project is already completed")
		}
		if project.CurrentPhase != name {
			return response.NewInvalidState("phase " + string(name) + " is not the current phase")
		}

		var phase models.Phase
		if err := tx.Where("project_id = ? AND name = ?", projectID, name).First(&phase).Error; err != nil {
			return err
		}
		if phase.Status != models.PhaseInProgress && phase.Status != models.PhaseReview {
			return response.NewInvalidState("phase has not been started")
		}

		now := time.Now()
		err := tx.Model(&phase).Updates(map[string]interface{}{
			"status":       models.PhaseCompleted,
			"completed_at": now,
		}).Error
		if err != nil {
			return err
		}

		projectUpdates := map[string]interface{}{
			completionColumn(name): true,
		}
		next = name.Next()
		if next == "" {
			projectUpdates["status"] = models.ProjectCompleted
		} else {
			projectUpdates["current_phase"] = next
			err := tx.Model(&models.Phase{}).
				Where("project_id = ? AND name = ?", projectID, next).
				Updates(map[string]interface{}{
					"status":     models.PhaseInProgress,
					"started_at": now,
				}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&project).Updates(projectUpdates).Error
	})
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	if s.events != nil {
		phase := string(next)
		if next == "" {
			phase = string(models.PhaseDevelopment)
		}
		s.events.Publish(CollabEvent{
			Type:      EventPhaseChanged,
			ProjectID: projectID,
			Phase:     phase,
			UserID:    userID,
		})
	}

	logger.Infof("[Workflow] Phase completed: project=%d, phase=%s, next=%s", projectID, name, next)
	return s.GetProject(projectID)
}

func completionColumn(name models.PhaseName) string {
	switch name {
	case models.PhaseDiscovery:
		return "discovery_complete"
	case models.PhaseDefinition:
		return "definition_complete"
	case models.PhaseDesign:
		return "design_complete"
	default:
		return "development_complete"
	}
}

// InitializePhaseArtifacts bulk-creates draft artifacts for every type the
// phase allows, skipping types that already exist in the phase.
func (s *WorkflowService) InitializePhaseArtifacts(projectID uint, name models.PhaseName, userID uint) ([]models.Artifact, error) {
	member, team, err := s.memberForProject(projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapManageArtifacts); err != nil {
		return nil, err
	}

	phase, err := s.phaseByName(projectID, name)
	if err != nil {
		return nil, err
	}

	var existing []models.Artifact
	if err := s.db.Where("phase_id = ?", phase.ID).Find(&existing).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	have := make(map[models.ArtifactType]bool, len(existing))
	for _, a := range existing {
		have[a.Type] = true
	}

	var created []models.Artifact
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range models.PhaseArtifactTypes[name] {
			if have[t] {
				continue
			}
			artifact := models.Artifact{
				ProjectID: projectID,
				PhaseID:   phase.ID,
				Type:      t,
				Status:    models.ArtifactDraft,
				Title:     string(t),
				CreatedBy: userID,
			}
			if err := tx.Create(&artifact).Error; err != nil {
				return err
			}
			created = append(created, artifact)
		}
		return nil
	})
	if err != nil {
		return nil, response.NewStoreFailure("artifacts not created")
	}
	return created, nil
}

// CreateArtifact adds a deliverable to a phase. The artifact type must be on
// the phase's allow-list.
func (s *WorkflowService) CreateArtifact(projectID uint, req *CreateArtifactRequest, userID uint) (*models.Artifact, error) {
	member, team, err := s.memberForProject(projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapManageArtifacts); err != nil {
		return nil, err
	}

	var phase models.Phase
	if err := s.db.First(&phase, req.PhaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("phase not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	if phase.ProjectID != projectID {
		return nil, response.NewBadRequest("phase does not belong to project")
	}
	if !req.Type.AllowedInPhase(phase.Name) {
		return nil, response.NewInvalidState(string(req.Type) + " artifacts are not allowed in the " + string(phase.Name) + " phase")
	}

	artifact := models.Artifact{
		ProjectID: projectID,
		PhaseID:   req.PhaseID,
		Type:      req.Type,
		Status:    models.ArtifactDraft,
		Title:     req.Title,
		Content:   req.Content,
		FileURL:   req.FileURL,
		CreatedBy: userID,
	}
	if err := s.db.Create(&artifact).Error; err != nil {
		return nil, response.NewStoreFailure("artifact not created")
	}
	return &artifact, nil
}

// GetArtifact returns an artifact by id.
func (s *WorkflowService) GetArtifact(id uint) (*models.Artifact, error) {
	var artifact models.Artifact
	if err := s.db.First(&artifact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("artifact not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &artifact, nil
}

// ListArtifacts returns a project's artifacts, optionally filtered to one
// phase.
func (s *WorkflowService) ListArtifacts(projectID uint, phaseID uint) ([]models.Artifact, error) {
	query := s.db.Where("project_id = ?", projectID)
	if phaseID != 0 {
		query = query.Where("phase_id = ?", phaseID)
	}
	var artifacts []models.Artifact
	if err := query.Order("created_at ASC").Find(&artifacts).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return artifacts, nil
}

// UpdateArtifact edits an artifact's fields. Changing content or the file
// reference bumps the version; title-only edits do not.
func (s *WorkflowService) UpdateArtifact(id uint, req *UpdateArtifactRequest, userID uint) (*models.Artifact, error) {
	artifact, err := s.GetArtifact(id)
	if err != nil {
		return nil, err
	}

	member, team, err := s.memberForProject(artifact.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapManageArtifacts); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	bumpVersion := false
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil && *req.Content != artifact.Content {
		updates["content"] = *req.Content
		bumpVersion = true
	}
	if req.FileURL != nil && *req.FileURL != artifact.FileURL {
		updates["file_url"] = *req.FileURL
		bumpVersion = true
	}
	if len(updates) == 0 {
		return artifact, nil
	}
	if bumpVersion {
		updates["version"] = artifact.Version + 1
	}

	if err := s.db.Model(artifact).Updates(updates).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return s.GetArtifact(id)
}

// UpdateArtifactStatus moves an artifact to any status. Status transitions
// are free-form; reviewers are trusted to move work back and forth.
func (s *WorkflowService) UpdateArtifactStatus(id uint, status models.ArtifactStatus, userID uint) (*models.Artifact, error) {
	if !status.Valid() {
		return nil, response.NewBadRequest("unknown artifact status: " + string(status))
	}

	artifact, err := s.GetArtifact(id)
	if err != nil {
		return nil, err
	}

	member, team, err := s.memberForProject(artifact.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapManageArtifacts); err != nil {
		return nil, err
	}

	if err := s.db.Model(artifact).Update("status", status).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	artifact.Status = status
	return artifact, nil
}
