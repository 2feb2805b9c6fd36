package services

import (
	"errors"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
)

// WorkspaceService owns the workspace/team/channel containment hierarchy.
type WorkspaceService struct {
	db          *gorm.DB
	permissions *PermissionService
}

func NewWorkspaceService(db *gorm.DB) *WorkspaceService {
	return &WorkspaceService{
		db:          db,
		permissions: NewPermissionService(db),
	}
}

type CreateWorkspaceRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	UserID  uint   `json:"user_id"`
	Name    string `json:"name" binding:"required"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`

	IsAutomated  bool   `json:"is_automated"`
	ModelID      string `json:"model_id"`
	Capabilities string `json:"capabilities"`
	Autonomous   bool   `json:"autonomous"`
	Instructions string `json:"instructions"`
}

type CreateChannelRequest struct {
	Name        string             `json:"name" binding:"required"`
	Type        models.ChannelType `json:"type" binding:"required"`
	Description string             `json:"description"`
	IsPrivate   bool               `json:"is_private"`
}

type AssignAgentRequest struct {
	AgentID uint   `json:"agent_id" binding:"required"`
	Role    string `json:"role"`
}

// Create creates a workspace and provisions one team per kind plus the
// default public general channel. Creation is not key-idempotent: callers
// that must not duplicate should check GetByProject first. A store failure
// surfaces as "not created" with no workspace returned.
func (s *WorkspaceService) Create(req *CreateWorkspaceRequest, userID uint) (*models.Workspace, error) {
	workspace := models.Workspace{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		for _, kind := range models.AllTeamKinds {
			team := models.Team{
				WorkspaceID: workspace.ID,
				Kind:        kind,
				Name:        defaultTeamName(kind),
			}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			// The creating user joins the studio team as admin.
			if kind == models.TeamStudio && userID != 0 {
				member := models.Member{
					TeamID:  team.ID,
					UserID:  userID,
					Name:    "Workspace Owner",
					Role:    "owner",
					IsAdmin: true,
				}
				if err := tx.Create(&member).Error; err != nil {
					return err
				}
			}
		}

		general := models.Channel{
			WorkspaceID: workspace.ID,
			Name:        "general",
			Type:        models.ChannelGeneral,
			IsPrivate:   false,
			CreatedBy:   userID,
		}
		return tx.Create(&general).Error
	})
	if err != nil {
		logger.Error().Err(err).Uint("project_id", req.ProjectID).Msg("workspace create failed")
		return nil, response.NewStoreFailure("workspace not created")
	}

	return s.GetByID(workspace.ID)
}

func defaultTeamName(kind models.TeamKind) string {
	switch kind {
	case models.TeamStudio:
		return "Studio Team"
	case models.TeamClient:
		return "Client Team"
	case models.TeamAgent:
		return "AI Assistants"
	}
	return string(kind)
}

// GetByID returns a workspace with its teams and channels.
func (s *WorkspaceService) GetByID(id uint) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Preload("Teams").Preload("Teams.Members").Preload("Channels").First(&workspace, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &workspace, nil
}

// GetByProject returns the workspace for a project id, if one exists.
func (s *WorkspaceService) GetByProject(projectID uint) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Preload("Teams").Preload("Channels").
		Where("project_id = ?", projectID).First(&workspace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("workspace not found for project")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &workspace, nil
}

// EnsureTeam returns the workspace's team of the given kind, creating it
// only if absent. Calling it twice with the same kind returns the same team.
func (s *WorkspaceService) EnsureTeam(workspaceID uint, kind models.TeamKind, name string) (*models.Team, error) {
	if !kind.Valid() {
		return nil, response.NewBadRequest("invalid team kind: " + string(kind))
	}

	var team models.Team
	err := s.db.Where("workspace_id = ? AND kind = ?", workspaceID, kind).First(&team).Error
	if err == nil {
		return &team, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewStoreFailure(err.Error())
	}

	if name == "" {
		name = defaultTeamName(kind)
	}
	team = models.Team{WorkspaceID: workspaceID, Kind: kind, Name: name}
	if err := s.db.Create(&team).Error; err != nil {
		// The unique index on (workspace_id, kind) guarantees a single
		// winner when two callers race past the lookup; the loser re-reads.
		var existing models.Team
		if lookupErr := s.db.Where("workspace_id = ? AND kind = ?", workspaceID, kind).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		logger.Error().Err(err).Uint("workspace_id", workspaceID).Msg("team create failed")
		return nil, response.NewStoreFailure("team not created")
	}
	return &team, nil
}

// AddMember adds a member to a team. Automated members may only join a team
// of kind agent.
func (s *WorkspaceService) AddMember(teamID uint, req *AddMemberRequest) (*models.Member, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("team not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	if req.IsAutomated && team.Kind != models.TeamAgent {
		return nil, response.NewInvalidState("automated members may only join an agent team")
	}

	member := models.Member{
		TeamID:       teamID,
		UserID:       req.UserID,
		Name:         req.Name,
		Role:         req.Role,
		IsAdmin:      req.IsAdmin,
		IsAutomated:  req.IsAutomated,
		ModelID:      req.ModelID,
		Capabilities: req.Capabilities,
		Autonomous:   req.Autonomous,
		Instructions: req.Instructions,
	}
	if err := s.db.Create(&member).Error; err != nil {
		logger.Error().Err(err).Uint("team_id", teamID).Msg("member create failed")
		return nil, response.NewStoreFailure("member not created")
	}
	return &member, nil
}

// CreateChannel creates a channel in the workspace, gated on the acting
// member's create_channel capability.
func (s *WorkspaceService) CreateChannel(workspaceID uint, req *CreateChannelRequest, actorUserID uint) (*models.Channel, error) {
	if !req.Type.Valid() {
		return nil, response.NewBadRequest("invalid channel type: " + string(req.Type))
	}

	member, team, err := s.permissions.MemberByUser(workspaceID, actorUserID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapCreateChannel); err != nil {
		return nil, err
	}

	channel := models.Channel{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   actorUserID,
	}
	if err := s.db.Create(&channel).Error; err != nil {
		logger.Error().Err(err).Uint("workspace_id", workspaceID).Msg("channel create failed")
		return nil, response.NewStoreFailure("channel not created")
	}
	return &channel, nil
}

// AddChannelMember adds a user id to a channel's membership list.
func (s *WorkspaceService) AddChannelMember(channelID, userID uint) (*models.Channel, error) {
	var channel models.Channel
	if err := s.db.First(&channel, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("channel not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	updated := models.AppendID(channel.MemberIDs, userID)
	if updated == channel.MemberIDs {
		return &channel, nil
	}
	if err := s.db.Model(&channel).Update("member_ids", updated).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	channel.MemberIDs = updated
	return &channel, nil
}

// AssignAgent attaches an automated member to a channel, gated on the
// acting member's assign_ai_agent capability.
func (s *WorkspaceService) AssignAgent(channelID uint, req *AssignAgentRequest, actorUserID uint) (*models.AgentAssignment, error) {
	var channel models.Channel
	if err := s.db.First(&channel, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("channel not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	member, team, err := s.permissions.MemberByUser(channel.WorkspaceID, actorUserID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapAssignAIAgent); err != nil {
		return nil, err
	}

	var agent models.Member
	if err := s.db.First(&agent, req.AgentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("agent not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	if !agent.IsAutomated {
		return nil, response.NewInvalidState("member is not an automated member")
	}

	assignment := models.AgentAssignment{
		ChannelID:  channelID,
		AgentID:    req.AgentID,
		Role:       req.Role,
		IsActive:   true,
		AssignedBy: actorUserID,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, response.NewStoreFailure("assignment not created")
	}
	return &assignment, nil
}

// Archive soft-deletes a workspace and its owned teams and channels.
func (s *WorkspaceService) Archive(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Workspace{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewNotFound("workspace not found")
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Team{}).Error; err != nil {
			return err
		}
		return tx.Where("workspace_id = ?", id).Delete(&models.Channel{}).Error
	})
}
