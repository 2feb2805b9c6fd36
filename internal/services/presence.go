package services

import (
	"sync"
	"time"
)

// PresenceEntry is one participant's live state within a thread.
type PresenceEntry struct {
	UserID           uint      `json:"user_id"`
	Name             string    `json:"name"`
	IsTyping         bool      `json:"is_typing"`
	LastActivity     time.Time `json:"last_activity"`
	ViewingMessageID *uint     `json:"viewing_message_id,omitempty"`
}

// ThreadPresence is the ephemeral per-thread collaboration snapshot. It is
// derived state, not authoritative history.
type ThreadPresence struct {
	ThreadID        uint            `json:"thread_id"`
	Participants    []PresenceEntry `json:"participants"`
	CurrentlyTyping []uint          `json:"currently_typing"`
}

// PresenceStore tracks live per-thread activity. Implementations prune
// entries older than the staleness window on every update, so staleness is
// bounded by call frequency rather than a background sweep. The store is
// injected rather than kept as a process global so multiple service
// instances can share one (an external cache can back this same interface).
type PresenceStore interface {
	// Update prunes stale entries, upserts the given entry, and returns
	// the resulting snapshot.
	Update(threadID uint, entry PresenceEntry) ThreadPresence
	// Get returns the current snapshot, or false if the thread has no
	// tracked activity.
	Get(threadID uint) (ThreadPresence, bool)
}

// memoryPresenceStore is the in-process PresenceStore. Locking is on the
// whole map but every operation touches exactly one thread's entries, so
// threads never contend on each other's data beyond the map access.
type memoryPresenceStore struct {
	mu        sync.Mutex
	staleness time.Duration
	threads   map[uint]map[uint]PresenceEntry // threadID -> userID -> entry
}

// NewMemoryPresenceStore creates an in-memory presence store with the given
// staleness window.
func NewMemoryPresenceStore(staleness time.Duration) PresenceStore {
	return &memoryPresenceStore{
		staleness: staleness,
		threads:   make(map[uint]map[uint]PresenceEntry),
	}
}

func (s *memoryPresenceStore) Update(threadID uint, entry PresenceEntry) ThreadPresence {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.threads[threadID]
	if !ok {
		entries = make(map[uint]PresenceEntry)
		s.threads[threadID] = entries
	}

	// Unconditional prune before the upsert
	cutoff := time.Now().Add(-s.staleness)
	for userID, e := range entries {
		if e.LastActivity.Before(cutoff) {
			delete(entries, userID)
		}
	}

	entry.LastActivity = time.Now()
	entries[entry.UserID] = entry

	return snapshotLocked(threadID, entries)
}

func (s *memoryPresenceStore) Get(threadID uint) (ThreadPresence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.threads[threadID]
	if !ok || len(entries) == 0 {
		return ThreadPresence{}, false
	}
	return snapshotLocked(threadID, entries), true
}

func snapshotLocked(threadID uint, entries map[uint]PresenceEntry) ThreadPresence {
	snapshot := ThreadPresence{ThreadID: threadID}
	for _, e := range entries {
		snapshot.Participants = append(snapshot.Participants, e)
		if e.IsTyping {
			snapshot.CurrentlyTyping = append(snapshot.CurrentlyTyping, e.UserID)
		}
	}
	return snapshot
}

// PresenceService exposes presence tracking to the HTTP layer and fans
// changes out to event subscribers.
type PresenceService struct {
	store  PresenceStore
	events *EventHub
}

func NewPresenceService(store PresenceStore, events *EventHub) *PresenceService {
	return &PresenceService{store: store, events: events}
}

type UpdatePresenceRequest struct {
	Name             string `json:"name"`
	IsTyping         bool   `json:"is_typing"`
	ViewingMessageID *uint  `json:"viewing_message_id"`
}

// UpdatePresence upserts the caller's entry for the thread and returns the
// pruned snapshot.
func (s *PresenceService) UpdatePresence(threadID, userID uint, req *UpdatePresenceRequest) ThreadPresence {
	snapshot := s.store.Update(threadID, PresenceEntry{
		UserID:           userID,
		Name:             req.Name,
		IsTyping:         req.IsTyping,
		ViewingMessageID: req.ViewingMessageID,
	})

	if s.events != nil {
		s.events.Publish(CollabEvent{
			Type:     EventPresenceChanged,
			ThreadID: threadID,
			UserID:   userID,
		})
	}
	return snapshot
}

// GetStatus returns the thread's presence snapshot, or false when nothing
// is tracked.
func (s *PresenceService) GetStatus(threadID uint) (ThreadPresence, bool) {
	return s.store.Get(threadID)
}
