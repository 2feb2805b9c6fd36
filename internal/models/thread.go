package models

import (
	"time"

	"gorm.io/gorm"
)

// Thread is an ordered conversation inside exactly one channel.
type Thread struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ChannelID uint         `gorm:"index;not null" json:"channel_id"`
	Title     string       `gorm:"size:300;not null" json:"title"`
	Status    ThreadStatus `gorm:"size:20;default:active;index" json:"status"`
	CreatedBy uint         `json:"created_by"`
	// ParticipantIDs is a comma-separated list of member user ids.
	ParticipantIDs string `gorm:"size:2000" json:"participant_ids"`
	IsPinned       bool   `gorm:"default:false" json:"is_pinned"`
	Tags           string `gorm:"size:500" json:"tags"` // comma-separated

	// NextSeq is the per-thread insertion sequence counter. Messages take
	// their Seq from it under the thread row, which breaks created_at ties.
	NextSeq int64 `gorm:"not null;default:0" json:"-"`

	// LastMessageAt is monotonically non-decreasing: bumped on every
	// accepted message and again when a generated message finalizes.
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Message belongs to exactly one thread. Display order is
// (created_at, seq); edits and generation finalization never move it.
type Message struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ThreadID    uint            `gorm:"index;not null" json:"thread_id"`
	SenderID    uint            `gorm:"index" json:"sender_id"`
	SenderKind  SenderKind      `gorm:"size:10;not null" json:"sender_kind"`
	Content     string          `gorm:"type:text" json:"content"`
	ContentType string          `gorm:"size:50;default:text" json:"content_type"`
	Seq         int64           `gorm:"not null" json:"seq"`
	ReplyToID   *uint           `json:"reply_to_id"`
	Mentions    string          `gorm:"size:1000" json:"mentions"` // comma-separated user ids
	EditedAt    *time.Time      `json:"edited_at"`
	State       GenerationState `gorm:"size:20;default:final;index" json:"state"`

	// Generation metadata, populated when an AI message finalizes.
	ModelID          string   `gorm:"size:100" json:"model_id,omitempty"`
	PromptTokens     int      `json:"prompt_tokens,omitempty"`
	CompletionTokens int      `json:"completion_tokens,omitempty"`
	Temperature      float64  `json:"temperature,omitempty"`
	GenerationMS     int64    `json:"generation_ms,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`

	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
	Reactions   []Reaction   `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Attachment belongs to one message. A generative_ui attachment carries a
// declarative UI specification as JSON in UISpec instead of a payload URL.
type Attachment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MessageID uint           `gorm:"index;not null" json:"message_id"`
	Type      AttachmentType `gorm:"size:20;not null" json:"type"`
	Name      string         `gorm:"size:300" json:"name"`
	URL       string         `gorm:"size:1000" json:"url,omitempty"`
	UISpec    string         `gorm:"type:text" json:"ui_spec,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Reaction is a single emoji reaction on a message.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Emoji     string    `gorm:"size:50;not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func (Thread) TableName() string     { return "threads" }
func (Message) TableName() string    { return "messages" }
func (Attachment) TableName() string { return "attachments" }
func (Reaction) TableName() string   { return "reactions" }
