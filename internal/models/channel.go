package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel is a topical sub-space of a workspace. Threads reference channels
// by id and persist independently of them.
type Channel struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"index;not null" json:"workspace_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Type        ChannelType    `gorm:"size:30;not null" json:"type"`
	Description string         `gorm:"size:1000" json:"description"`
	IsPrivate   bool           `gorm:"default:false" json:"is_private"`
	// MemberIDs is the channel membership list: comma-separated user ids.
	MemberIDs   string            `gorm:"size:2000" json:"member_ids"`
	Assignments []AgentAssignment `gorm:"foreignKey:ChannelID" json:"assignments,omitempty"`
	CreatedBy   uint              `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

// AgentAssignment attaches an automated member to a channel.
type AgentAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChannelID  uint      `gorm:"index;not null" json:"channel_id"`
	AgentID    uint      `gorm:"index;not null" json:"agent_id"` // Member.ID of the automated member
	Role       string    `gorm:"size:100" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	AssignedBy uint      `json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Channel) TableName() string         { return "channels" }
func (AgentAssignment) TableName() string { return "agent_assignments" }
