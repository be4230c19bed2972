// Package store provides session state interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/sagemind/internal/domain"
)

// Repository defines the interface for per-conversation session state.
// All state is keyed by ConversationID and never shared across conversations.
type Repository interface {
	// Mood retrieves the last reported mood, or nil when none was reported.
	Mood(ctx context.Context, id domain.ConversationID) (*domain.MoodEntry, error)

	// SetMood records a mood report, replacing any previous one.
	SetMood(ctx context.Context, id domain.ConversationID, entry domain.MoodEntry) error

	// Journal retrieves all journal entries in arrival order.
	Journal(ctx context.Context, id domain.ConversationID) ([]domain.JournalEntry, error)

	// AppendJournal adds a journal entry after all existing ones.
	AppendJournal(ctx context.Context, id domain.ConversationID, entry domain.JournalEntry) error

	// FlowState retrieves the active flow state and the instant it was
	// entered. Conversations with no recorded state are FlowIdle.
	FlowState(ctx context.Context, id domain.ConversationID) (domain.FlowState, time.Time, error)

	// SetFlowState records the active flow state. Setting FlowIdle clears
	// any stored state.
	SetFlowState(ctx context.Context, id domain.ConversationID, state domain.FlowState, enteredAt time.Time) error

	// ChatActive reports whether the conversation has an active chat flag.
	ChatActive(ctx context.Context, id domain.ConversationID) (bool, error)

	// SetChatActive marks the conversation as having an active chat.
	SetChatActive(ctx context.Context, id domain.ConversationID) error

	// ClearChatActive removes the chat-active flag. Mood and journal data
	// are left untouched.
	ClearChatActive(ctx context.Context, id domain.ConversationID) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
