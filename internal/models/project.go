package models

import (
	"time"

	"gorm.io/gorm"
)

// Project carries the delivery-pipeline state for one client engagement.
// The collaboration side references it only by id.
type Project struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:200;not null" json:"name"`
	Status       ProjectStatus `gorm:"size:20;default:active" json:"status"`
	CurrentPhase PhaseName     `gorm:"size:20" json:"current_phase"`

	DiscoveryComplete   bool `gorm:"default:false" json:"discovery_complete"`
	DefinitionComplete  bool `gorm:"default:false" json:"definition_complete"`
	DesignComplete      bool `gorm:"default:false" json:"design_complete"`
	DevelopmentComplete bool `gorm:"default:false" json:"development_complete"`

	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Phase is one of the four ordered delivery stages of a project.
type Phase struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ProjectID   uint        `gorm:"index;not null" json:"project_id"`
	Name        PhaseName   `gorm:"size:20;not null" json:"name"`
	Status      PhaseStatus `gorm:"size:20;default:not_started" json:"status"`
	StartedAt   *time.Time  `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Artifact is a deliverable work item scoped to a project phase. Version
// increments whenever content or the file reference changes.
type Artifact struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	PhaseID   uint           `gorm:"index;not null" json:"phase_id"`
	Type      ArtifactType   `gorm:"size:50;not null" json:"type"`
	Status    ArtifactStatus `gorm:"size:20;default:draft;index" json:"status"`
	Title     string         `gorm:"size:300" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	FileURL   string         `gorm:"size:1000" json:"file_url"`
	Version   int            `gorm:"default:1" json:"version"`
	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string  { return "projects" }
func (Phase) TableName() string    { return "phases" }
func (Artifact) TableName() string { return "artifacts" }
