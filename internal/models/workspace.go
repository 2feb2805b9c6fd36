package models

import (
	"time"

	"gorm.io/gorm"
)

// Workspace is the root collaboration container, scoped to one project.
// It owns its teams and channels; archiving the workspace cascades to them.
type Workspace struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	CreatedBy   uint           `json:"created_by"`
	Teams       []Team         `gorm:"foreignKey:WorkspaceID" json:"teams,omitempty"`
	Channels    []Channel      `gorm:"foreignKey:WorkspaceID" json:"channels,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Team is a named group of one kind within a workspace. At most one team
// per kind exists in a workspace.
type Team struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"not null;uniqueIndex:idx_teams_workspace_kind" json:"workspace_id"`
	Kind        TeamKind       `gorm:"size:20;not null;uniqueIndex:idx_teams_workspace_kind" json:"kind"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	Members     []Member       `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Member is a participant in a team. Automated members carry the extra
// generation fields and may only belong to a team of kind agent.
type Member struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TeamID uint `gorm:"index;not null" json:"team_id"`
	UserID uint `gorm:"index" json:"user_id"` // external identity id; 0 for automated members

	Name    string `gorm:"size:200;not null" json:"name"`
	Role    string `gorm:"size:100" json:"role"` // free-form role label
	IsAdmin bool   `gorm:"default:false" json:"is_admin"`

	// ExtraCapabilities grants capabilities beyond the team-kind defaults.
	// Comma-separated capability names.
	ExtraCapabilities string `gorm:"size:1000" json:"extra_capabilities"`

	// Automated-member fields
	IsAutomated  bool   `gorm:"default:false;index" json:"is_automated"`
	ModelID      string `gorm:"size:100" json:"model_id"`                  // generation-provider model identifier
	Capabilities string `gorm:"size:1000" json:"capabilities"`             // answer_questions,generate_content,...
	Autonomous   bool   `gorm:"default:false" json:"autonomous"`
	Instructions string `gorm:"type:text" json:"instructions"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Workspace) TableName() string { return "workspaces" }
func (Team) TableName() string      { return "teams" }
func (Member) TableName() string    { return "members" }
