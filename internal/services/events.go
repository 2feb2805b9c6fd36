package services

import (
	"sync"

	"github.com/atelierhq/atelierflow/backend/internal/models"
)

// CollabEventType names a real-time collaboration event.
type CollabEventType string

const (
	EventMessageCreated   CollabEventType = "message_created"
	EventMessageFinalized CollabEventType = "message_finalized"
	EventGenerationFailed CollabEventType = "generation_failed"
	EventPresenceChanged  CollabEventType = "presence_changed"
	EventPhaseChanged     CollabEventType = "phase_changed"
)

// CollabEvent is a real-time update pushed to SSE subscribers.
type CollabEvent struct {
	Type     CollabEventType `json:"type"`
	ThreadID uint            `json:"thread_id,omitempty"`
	// Informational is set on completions that landed after the hosting
	// thread was archived; subscribers should not raise notifications.
	Informational bool            `json:"informational,omitempty"`
	Message       *models.Message `json:"message,omitempty"`
	ProjectID     uint            `json:"project_id,omitempty"`
	Phase         string          `json:"phase,omitempty"`
	UserID        uint            `json:"user_id,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// EventHub manages SSE client connections and event broadcasting.
type EventHub struct {
	clients map[string]chan CollabEvent
	mu      sync.RWMutex
}

// NewEventHub creates a new event hub instance.
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan CollabEvent),
	}
}

// Subscribe registers a new client and returns a channel for receiving events.
func (h *EventHub) Subscribe(clientID string) <-chan CollabEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered channel to prevent blocking publishers
	ch := make(chan CollabEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub.
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients.
func (h *EventHub) Publish(event CollabEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var (
	globalEventHub *EventHub
	eventHubOnce   sync.Once
)

// GetEventHub returns the global event hub singleton.
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}
