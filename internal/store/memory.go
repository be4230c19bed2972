package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/sagemind/internal/domain"
)

// MemoryStore implements Repository with in-process maps. It is the default
// store: state lives exactly as long as the process.
type MemoryStore struct {
	mu         sync.RWMutex
	moods      map[domain.ConversationID]domain.MoodEntry
	journals   map[domain.ConversationID][]domain.JournalEntry
	flows      map[domain.ConversationID]flowRecord
	chatActive map[domain.ConversationID]struct{}
}

type flowRecord struct {
	state     domain.FlowState
	enteredAt time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		moods:      make(map[domain.ConversationID]domain.MoodEntry),
		journals:   make(map[domain.ConversationID][]domain.JournalEntry),
		flows:      make(map[domain.ConversationID]flowRecord),
		chatActive: make(map[domain.ConversationID]struct{}),
	}
}

// Mood retrieves the last reported mood, or nil when none was reported.
func (s *MemoryStore) Mood(_ context.Context, id domain.ConversationID) (*domain.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.moods[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// SetMood records a mood report, replacing any previous one.
func (s *MemoryStore) SetMood(_ context.Context, id domain.ConversationID, entry domain.MoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moods[id] = entry
	return nil
}

// Journal retrieves all journal entries in arrival order.
func (s *MemoryStore) Journal(_ context.Context, id domain.ConversationID) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.journals[id]
	out := make([]domain.JournalEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// AppendJournal adds a journal entry after all existing ones.
func (s *MemoryStore) AppendJournal(_ context.Context, id domain.ConversationID, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journals[id] = append(s.journals[id], entry)
	return nil
}

// FlowState retrieves the active flow state and the instant it was entered.
func (s *MemoryStore) FlowState(_ context.Context, id domain.ConversationID) (domain.FlowState, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.flows[id]
	if !ok {
		return domain.FlowIdle, time.Time{}, nil
	}
	return rec.state, rec.enteredAt, nil
}

// SetFlowState records the active flow state.
func (s *MemoryStore) SetFlowState(_ context.Context, id domain.ConversationID, state domain.FlowState, enteredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == domain.FlowIdle {
		delete(s.flows, id)
		return nil
	}
	s.flows[id] = flowRecord{state: state, enteredAt: enteredAt}
	return nil
}

// ChatActive reports whether the conversation has an active chat flag.
func (s *MemoryStore) ChatActive(_ context.Context, id domain.ConversationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.chatActive[id]
	return ok, nil
}

// SetChatActive marks the conversation as having an active chat.
func (s *MemoryStore) SetChatActive(_ context.Context, id domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatActive[id] = struct{}{}
	return nil
}

// ClearChatActive removes the chat-active flag.
func (s *MemoryStore) ClearChatActive(_ context.Context, id domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chatActive, id)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
