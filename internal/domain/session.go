// Package domain contains core domain types for the SageMind bot.
package domain

import "time"

// ConversationID identifies a single chat on the messaging platform. It is
// opaque to all bot logic and only ever used as a key into session state.
type ConversationID int64

// TimestampLayout is the fixed sortable layout stamped onto mood and journal
// entries at write time.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp formats t in the entry timestamp layout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// MoodEntry is the most recent mood reported in a conversation. Each new
// report replaces the previous one; no history is kept.
type MoodEntry struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// JournalEntry is a single private journal note. Entries accumulate in
// arrival order for the lifetime of the store.
type JournalEntry struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// FlowState tags the guided interaction a conversation is currently in.
// A conversation in a non-idle state has been prompted and the next inbound
// message belongs to that flow.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowAwaitingMood
	FlowAwaitingJournal
)

// String returns the state name used in logs and the sqlite store.
func (s FlowState) String() string {
	switch s {
	case FlowAwaitingMood:
		return "awaiting_mood"
	case FlowAwaitingJournal:
		return "awaiting_journal"
	default:
		return "idle"
	}
}

// ParseFlowState maps a stored state name back to its FlowState. Unknown
// names decode as FlowIdle so a corrupt row can never wedge a conversation.
func ParseFlowState(raw string) FlowState {
	switch raw {
	case "awaiting_mood":
		return FlowAwaitingMood
	case "awaiting_journal":
		return FlowAwaitingJournal
	default:
		return FlowIdle
	}
}
