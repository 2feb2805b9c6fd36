package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atelierhq/atelierflow/backend/internal/config"
	"github.com/atelierhq/atelierflow/backend/internal/models"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/atelierhq/atelierflow/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeneratingPlaceholder is the fixed content of a placeholder message while
// the provider call is in flight.
const GeneratingPlaceholder = "Generating response…"

// GenerationService is the async generation coordinator: it owns the
// placeholder-then-finalize lifecycle of AI messages and the single-shot
// UI-component generation path.
type GenerationService struct {
	db       *gorm.DB
	provider Provider
	cfg      *config.ProviderConfig
	threads  *ThreadService
	events   *EventHub
	queue    TaskQueue
}

func NewGenerationService(db *gorm.DB, provider Provider, cfg *config.ProviderConfig, threads *ThreadService, events *EventHub, queue TaskQueue) *GenerationService {
	return &GenerationService{
		db:       db,
		provider: provider,
		cfg:      cfg,
		threads:  threads,
		events:   events,
		queue:    queue,
	}
}

type GenerateMessageRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	AgentID     uint   `json:"agent_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

type GenerateUIRequest struct {
	UIType     string                 `json:"ui_type" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

// loadAgent fetches an automated member and its team.
func (s *GenerationService) loadAgent(agentID uint) (*models.Member, *models.Team, error) {
	var agent models.Member
	if err := s.db.First(&agent, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("agent not found")
		}
		return nil, nil, response.NewStoreFailure(err.Error())
	}
	if !agent.IsAutomated {
		return nil, nil, response.NewInvalidState("member is not an automated member")
	}

	var team models.Team
	if err := s.db.First(&team, agent.TeamID).Error; err != nil {
		return nil, nil, response.NewStoreFailure(err.Error())
	}
	return &agent, &team, nil
}

// GenerateAIMessage synchronously inserts a placeholder message in state
// generating, then dispatches the provider call. The placeholder is
// immediately visible to thread readers and keeps its created_at for
// display ordering; the thread's last_message_at is bumped only when the
// generation finalizes. Concurrent calls on the same thread each get their
// own placeholder and resolve independently.
func (s *GenerationService) GenerateAIMessage(threadID uint, req *GenerateMessageRequest) (*models.Message, error) {
	agent, team, err := s.loadAgent(req.AgentID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(agent, team.Kind, CapGenerateContent); err != nil {
		return nil, err
	}
	if agent.Capabilities != "" && !AgentHasCapability(agent, CapGenerateContent) {
		return nil, response.NewPermissionDenied("agent does not have the generate_content capability")
	}

	thread, err := s.threads.GetThread(threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status == models.ThreadArchived {
		return nil, response.NewInvalidState("thread is archived")
	}

	placeholder := models.Message{
		ThreadID:    threadID,
		SenderID:    req.AgentID,
		SenderKind:  models.SenderAI,
		Content:     GeneratingPlaceholder,
		ContentType: "text",
		State:       models.GenerationGenerating,
		ModelID:     agent.ModelID,
	}
	if err := s.threads.appendMessage(&placeholder, false); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(CollabEvent{
			Type:     EventMessageCreated,
			ThreadID: threadID,
			Message:  &placeholder,
		})
	}

	task := &GenerationTask{
		MessageID:   placeholder.ID,
		ThreadID:    threadID,
		AgentID:     req.AgentID,
		Prompt:      req.Prompt,
		ModelID:     agent.ModelID,
		DisplayName: req.DisplayName,
		Temperature: s.cfg.Temperature,
	}
	if err := s.queue.Enqueue(task); err != nil {
		// The placeholder stays in state generating; a higher layer
		// reconciles stuck placeholders.
		logger.Errorf("[Generation] enqueue failed for message %d: %v", placeholder.ID, err)
		return &placeholder, response.NewProviderFailure("generation could not be dispatched")
	}

	return &placeholder, nil
}

// ProcessGeneration executes one queued generation task: it calls the
// provider with the configured timeout and finalizes the placeholder on
// success. On failure it reports upward without retrying, leaving the
// placeholder in state generating.
func (s *GenerationService) ProcessGeneration(ctx context.Context, task *GenerationTask) error {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := s.provider.Complete(callCtx, &CompletionRequest{
		Prompt:      task.Prompt,
		Model:       task.ModelID,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: task.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.Errorf("[Generation] provider failed for message %d after %s: %v", task.MessageID, elapsed, err)
		if s.events != nil {
			s.events.Publish(CollabEvent{
				Type:     EventGenerationFailed,
				ThreadID: task.ThreadID,
				Error:    err.Error(),
			})
		}
		return response.NewProviderFailure(err.Error())
	}

	return s.FinalizeAIMessage(task.MessageID, task.Temperature, result, elapsed)
}

// FinalizeAIMessage moves a placeholder from generating to final in place:
// content, generation metadata, and edited_at change; created_at and seq do
// not, so display ordering is unaffected. The owning thread's
// last_message_at is bumped here so "most recently completed" ordering is
// accurate. The transition applies at most once: a second call on a message
// that is no longer generating is a no-op.
func (s *GenerationService) FinalizeAIMessage(messageID uint, temperature float64, result *CompletionResult, elapsed time.Duration) error {
	var threadArchived bool
	var finalized *models.Message

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&msg, messageID).Error; err != nil {
			return err
		}

		if msg.State != models.GenerationGenerating {
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"content":           result.Text,
			"state":             models.GenerationFinal,
			"edited_at":         now,
			"model_id":          result.Model,
			"prompt_tokens":     result.PromptTokens,
			"completion_tokens": result.CompletionTokens,
			"temperature":       temperature,
			"generation_ms":     elapsed.Milliseconds(),
		}
		if err := tx.Model(&msg).Updates(updates).Error; err != nil {
			return err
		}

		var thread models.Thread
		if err := tx.First(&thread, msg.ThreadID).Error; err != nil {
			return err
		}
		threadArchived = thread.Status == models.ThreadArchived

		threadUpdates := map[string]interface{}{"updated_at": now}
		if !now.Before(thread.LastMessageAt) {
			threadUpdates["last_message_at"] = now
		}
		if err := tx.Model(&thread).Updates(threadUpdates).Error; err != nil {
			return err
		}

		msg.Content = result.Text
		msg.State = models.GenerationFinal
		msg.EditedAt = &now
		finalized = &msg
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("message not found")
		}
		return response.NewStoreFailure(err.Error())
	}

	if finalized != nil && s.events != nil {
		// Completions that land on an archived thread still apply to the
		// message but are flagged so subscribers skip notifications.
		s.events.Publish(CollabEvent{
			Type:          EventMessageFinalized,
			ThreadID:      finalized.ThreadID,
			Message:       finalized,
			Informational: threadArchived,
		})
	}
	return nil
}

// GenerateUIComponent is the single-shot variant: one provider call, then a
// best-effort parse of a UI specification out of the response. It returns
// an attachment descriptor without appending a message; the caller decides
// which message carries it.
func (s *GenerationService) GenerateUIComponent(ctx context.Context, threadID, senderID uint, req *GenerateUIRequest) (*models.Attachment, error) {
	agent, team, err := s.loadAgent(senderID)
	if err != nil {
		return nil, err
	}
	if err := CheckMember(agent, team.Kind, CapGenerateUI); err != nil {
		return nil, err
	}
	if agent.Capabilities != "" && !AgentHasCapability(agent, CapGenerateUI) {
		return nil, response.NewPermissionDenied("agent does not have the generate_ui capability")
	}

	if _, err := s.threads.GetThread(threadID); err != nil {
		return nil, err
	}

	params, _ := json.Marshal(req.Parameters)
	prompt := fmt.Sprintf(
		"Produce a declarative UI component specification as a JSON object with fields "+
			"type, props, children, style, handlers. Component type: %s. Parameters: %s. "+
			"Respond with only the JSON object.",
		req.UIType, string(params))

	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := s.provider.Complete(callCtx, &CompletionRequest{
		Prompt:    prompt,
		Model:     agent.ModelID,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, response.NewProviderFailure(err.Error())
	}

	spec := parseUISpec(result.Text, req.UIType, req.Parameters)
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, response.NewProviderFailure("could not encode UI specification")
	}

	return &models.Attachment{
		Type:   models.AttachmentGenerativeUI,
		Name:   req.UIType,
		UISpec: string(specJSON),
	}, nil
}

// ListStuckGenerating returns placeholder messages older than the given
// age that never finalized. There is no automatic sweep; reconciliation is
// an operator (or future job) concern.
func (s *GenerationService) ListStuckGenerating(olderThan time.Duration) ([]models.Message, error) {
	var messages []models.Message
	cutoff := time.Now().Add(-olderThan)
	err := s.db.Where("state = ? AND created_at < ?", models.GenerationGenerating, cutoff).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, response.NewStoreFailure(err.Error())
	}
	return messages, nil
}
