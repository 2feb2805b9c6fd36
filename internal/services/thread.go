package services

import (
	"errors"
	"strings"
	"time"

	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadService is the ordered conversation store: threads, messages,
// attachments, reactions.
type ThreadService struct {
	db          *gorm.DB
	permissions *PermissionService
	events      *EventHub
}

func NewThreadService(db *gorm.DB, events *EventHub) *ThreadService {
	return &ThreadService{
		db:          db,
		permissions: NewPermissionService(db),
		events:      events,
	}
}

type CreateThreadRequest struct {
	Title string   `json:"title" binding:"required"`
	Tags  []string `json:"tags"`
}

type SendMessageRequest struct {
	Content     string            `json:"content" binding:"required"`
	ContentType string            `json:"content_type"`
	SenderKind  models.SenderKind `json:"sender_kind"`
	ReplyToID   *uint             `json:"reply_to_id"`
	Mentions    []uint            `json:"mentions"`
}

// memberForChannel resolves the acting member within the channel's workspace.
// Private channels additionally require the caller to be on the channel's
// membership list (or its creator).
func (s *ThreadService) memberForChannel(channelID, userID uint) (*models.Member, *models.Team, *models.Channel, error) {
	var channel models.Channel
	if err := s.db.First(&channel, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, response.NewNotFound("channel not found")
		}
		return nil, nil, nil, response.NewStoreFailure(err.Error())
	}
	member, team, err := s.permissions.MemberByUser(channel.WorkspaceID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if channel.IsPrivate && channel.CreatedBy != userID && !models.ContainsID(channel.MemberIDs, userID) {
		return nil, nil, nil, response.NewPermissionDenied("not a member of this private channel")
	}
	return member, team, &channel, nil
}

func (s *ThreadService) memberForThread(threadID, userID uint) (*models.Member, *models.Team, *models.Thread, error) {
	var thread models.Thread
	if err := s.db.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, response.NewNotFound("thread not found")
		}
		return nil, nil, nil, response.NewStoreFailure(err.Error())
	}
	member, team, _, err := s.memberForChannel(thread.ChannelID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	return member, team, &thread, nil
}

// CreateThread opens a thread in a channel. The creator is the sole initial
// participant and last_message_at starts at creation time.
func (s *ThreadService) CreateThread(channelID uint, req *CreateThreadRequest, userID uint) (*models.Thread, error) {
	member, team, _, err := s.memberForChannel(channelID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapCreateThread); err != nil {
		return nil, err
	}

	now := time.Now()
	thread := models.Thread{
		ChannelID:      channelID,
		Title:          req.Title,
		Status:         models.ThreadActive,
		CreatedBy:      userID,
		ParticipantIDs: models.JoinIDList([]uint{userID}),
		Tags:           joinTags(req.Tags),
		LastMessageAt:  now,
	}
	if err := s.db.Create(&thread).Error; err != nil {
		return nil, response.NewStoreFailure("thread not created")
	}
	return &thread, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// GetThread returns a thread by id.
func (s *ThreadService) GetThread(id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.First(&thread, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("thread not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}
	return &thread, nil
}

// ListThreads returns a channel's threads, pinned first, most recently
// active next.
func (s *ThreadService) ListThreads(channelID uint) ([]models.Thread, error) {
	var threads []models.Thread
	err := s.db.Where("channel_id = ?", channelID).
		Order("is_pinned DESC, last_message_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return threads, nil
}

// SendMessage appends a final message to a thread and atomically bumps the
// thread's last_message_at and updated_at to the message's creation time.
func (s *ThreadService) SendMessage(threadID uint, req *SendMessageRequest, userID uint) (*models.Message, error) {
	member, team, thread, err := s.memberForThread(threadID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, CapSendMessage); err != nil {
		return nil, err
	}
	if thread.Status == models.ThreadArchived {
		return nil, response.NewInvalidState("thread is archived")
	}

	kind := req.SenderKind
	if kind == "" {
		kind = models.SenderHuman
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "text"
	}

	msg := models.Message{
		ThreadID:    threadID,
		SenderID:    userID,
		SenderKind:  kind,
		Content:     req.Content,
		ContentType: contentType,
		ReplyToID:   req.ReplyToID,
		Mentions:    models.JoinIDList(req.Mentions),
		State:       models.GenerationFinal,
	}

	if err := s.appendMessage(&msg, true); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(CollabEvent{
			Type:     EventMessageCreated,
			ThreadID: threadID,
			Message:  &msg,
		})
	}
	return &msg, nil
}

// appendMessage inserts a message and updates the owning thread inside one
// transaction, taking the insertion sequence from the locked thread row.
// last_message_at is bumped only when bumpLastMessage is set (placeholder
// insertions defer the bump to finalization) and never moves backwards.
func (s *ThreadService) appendMessage(msg *models.Message, bumpLastMessage bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var thread models.Thread
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&thread, msg.ThreadID).Error; err != nil {
			return err
		}

		now := time.Now()
		msg.Seq = thread.NextSeq
		msg.CreatedAt = now
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"next_seq":        thread.NextSeq + 1,
			"updated_at":      now,
			"participant_ids": models.AppendID(thread.ParticipantIDs, msg.SenderID),
		}
		if bumpLastMessage && !now.Before(thread.LastMessageAt) {
			updates["last_message_at"] = now
		}
		return tx.Model(&models.Thread{}).Where("id = ?", thread.ID).Updates(updates).Error
	})
	if err != nil {
		return response.NewStoreFailure("message not created")
	}
	return nil
}

// ListMessages returns a thread's messages in display order:
// (created_at, seq) ascending.
func (s *ThreadService) ListMessages(threadID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Preload("Attachments").Preload("Reactions").
		Where("thread_id = ?", threadID).
		Order("created_at ASC, seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return messages, nil
}

// EditMessage replaces a message's content, stamping edited_at. Ordering
// position (created_at, seq) never changes. The sender may edit their own
// messages; edit_any_message overrides.
func (s *ThreadService) EditMessage(messageID uint, content string, userID uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("message not found")
		}
		return nil, response.NewStoreFailure(err.Error())
	}

	member, team, _, err := s.memberForThread(msg.ThreadID, userID)
	if err != nil {
		return nil, err
	}

	required := CapEditOwnMessage
	if msg.SenderID != userID {
		required = CapEditAnyMessage
	}
	if err := CheckMember(member, team.Kind, required); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Model(&msg).Updates(map[string]interface{}{
		"content":   content,
		"edited_at": now,
	}).Error
	if err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	msg.Content = content
	msg.EditedAt = &now
	return &msg, nil
}

// AddReaction records an emoji reaction, once per (user, emoji) pair.
func (s *ThreadService) AddReaction(messageID uint, emoji string, userID uint) error {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("message not found")
		}
		return response.NewStoreFailure(err.Error())
	}

	member, team, _, err := s.memberForThread(msg.ThreadID, userID)
	if err != nil {
		return err
	}
	if err := CheckMember(member, team.Kind, CapAddReaction); err != nil {
		return err
	}

	var existing models.Reaction
	err = s.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewStoreFailure(err.Error())
	}

	reaction := models.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}
	if err := s.db.Create(&reaction).Error; err != nil {
		return response.NewStoreFailure(err.Error())
	}
	return nil
}

// RemoveReaction deletes the caller's reaction.
func (s *ThreadService) RemoveReaction(messageID uint, emoji string, userID uint) error {
	err := s.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{}).Error
	if err != nil {
		return response.NewStoreFailure(err.Error())
	}
	return nil
}

// SetPinned pins or unpins a thread.
func (s *ThreadService) SetPinned(threadID uint, pinned bool, userID uint) (*models.Thread, error) {
	return s.updateThreadGated(threadID, userID, CapPinThread, map[string]interface{}{
		"is_pinned": pinned,
	})
}

// Resolve marks a thread resolved.
func (s *ThreadService) Resolve(threadID, userID uint) (*models.Thread, error) {
	return s.updateThreadGated(threadID, userID, CapResolveThread, map[string]interface{}{
		"status": models.ThreadResolved,
	})
}

// Archive marks a thread archived. In-flight generations on the thread
// still finalize; subscribers treat those completions as informational.
func (s *ThreadService) Archive(threadID, userID uint) (*models.Thread, error) {
	return s.updateThreadGated(threadID, userID, CapArchiveThread, map[string]interface{}{
		"status": models.ThreadArchived,
	})
}

func (s *ThreadService) updateThreadGated(threadID, userID uint, required Capability, updates map[string]interface{}) (*models.Thread, error) {
	member, team, thread, err := s.memberForThread(threadID, userID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(member, team.Kind, required); err != nil {
		return nil, err
	}

	if err := s.db.Model(thread).Updates(updates).Error; err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return s.GetThread(threadID)
}
