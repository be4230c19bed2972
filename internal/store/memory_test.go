package store

import (
	"context"
	"testing"
	"time"

	"github.com/ashureev/sagemind/internal/domain"
)

func TestMemoryMoodOverwrite(t *testing.T) {
	t.Parallel()
	testMoodOverwrite(t, NewMemory())
}

func TestMemoryJournalAppend(t *testing.T) {
	t.Parallel()
	testJournalAppend(t, NewMemory())
}

func TestMemoryFlowStateRoundTrip(t *testing.T) {
	t.Parallel()
	testFlowStateRoundTrip(t, NewMemory())
}

func TestMemoryChatActiveFlag(t *testing.T) {
	t.Parallel()
	testChatActiveFlag(t, NewMemory())
}

func TestMemoryConversationIsolation(t *testing.T) {
	t.Parallel()
	testConversationIsolation(t, NewMemory())
}

// The semantics below hold for every Repository implementation; the sqlite
// tests reuse the same helpers.

func testMoodOverwrite(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	id := domain.ConversationID(101)

	got, err := repo.Mood(ctx, id)
	if err != nil {
		t.Fatalf("mood lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no mood before first report, got %+v", got)
	}

	first := domain.MoodEntry{Text: "Happy", Timestamp: "2025-01-01 10:00:00"}
	second := domain.MoodEntry{Text: "Anxious", Timestamp: "2025-01-01 11:00:00"}
	if err := repo.SetMood(ctx, id, first); err != nil {
		t.Fatalf("set first mood: %v", err)
	}
	if err := repo.SetMood(ctx, id, second); err != nil {
		t.Fatalf("set second mood: %v", err)
	}

	got, err = repo.Mood(ctx, id)
	if err != nil {
		t.Fatalf("mood lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected a stored mood")
	}
	if got.Text != "Anxious" || got.Timestamp != "2025-01-01 11:00:00" {
		t.Errorf("expected second mood retained, got %+v", got)
	}
}

func testJournalAppend(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	id := domain.ConversationID(202)

	entries := []domain.JournalEntry{
		{Text: "first thought", Timestamp: "2025-01-01 10:00:00"},
		{Text: "second thought", Timestamp: "2025-01-01 10:05:00"},
		{Text: "third thought", Timestamp: "2025-01-01 10:10:00"},
	}
	for _, entry := range entries {
		if err := repo.AppendJournal(ctx, id, entry); err != nil {
			t.Fatalf("append journal: %v", err)
		}
	}

	got, err := repo.Journal(ctx, id)
	if err != nil {
		t.Fatalf("journal lookup: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d mismatch: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func testFlowStateRoundTrip(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	id := domain.ConversationID(303)

	st, _, err := repo.FlowState(ctx, id)
	if err != nil {
		t.Fatalf("flow state lookup: %v", err)
	}
	if st != domain.FlowIdle {
		t.Fatalf("expected idle for fresh conversation, got %v", st)
	}

	entered := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.SetFlowState(ctx, id, domain.FlowAwaitingMood, entered); err != nil {
		t.Fatalf("set flow state: %v", err)
	}

	st, gotEntered, err := repo.FlowState(ctx, id)
	if err != nil {
		t.Fatalf("flow state lookup: %v", err)
	}
	if st != domain.FlowAwaitingMood {
		t.Errorf("expected awaiting_mood, got %v", st)
	}
	if !gotEntered.Equal(entered) {
		t.Errorf("expected entered time %v, got %v", entered, gotEntered)
	}

	if err := repo.SetFlowState(ctx, id, domain.FlowIdle, time.Time{}); err != nil {
		t.Fatalf("reset flow state: %v", err)
	}
	st, _, err = repo.FlowState(ctx, id)
	if err != nil {
		t.Fatalf("flow state lookup: %v", err)
	}
	if st != domain.FlowIdle {
		t.Errorf("expected idle after reset, got %v", st)
	}
}

func testChatActiveFlag(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	id := domain.ConversationID(404)

	active, err := repo.ChatActive(ctx, id)
	if err != nil {
		t.Fatalf("chat active lookup: %v", err)
	}
	if active {
		t.Fatal("expected inactive for fresh conversation")
	}

	if err := repo.SetChatActive(ctx, id); err != nil {
		t.Fatalf("set chat active: %v", err)
	}
	// Setting twice must not error.
	if err := repo.SetChatActive(ctx, id); err != nil {
		t.Fatalf("set chat active again: %v", err)
	}

	active, err = repo.ChatActive(ctx, id)
	if err != nil {
		t.Fatalf("chat active lookup: %v", err)
	}
	if !active {
		t.Fatal("expected active after set")
	}

	// Clearing the flag must not touch mood or journal data.
	mood := domain.MoodEntry{Text: "Calm", Timestamp: "2025-01-01 10:00:00"}
	if err := repo.SetMood(ctx, id, mood); err != nil {
		t.Fatalf("set mood: %v", err)
	}
	if err := repo.AppendJournal(ctx, id, domain.JournalEntry{Text: "note", Timestamp: "2025-01-01 10:01:00"}); err != nil {
		t.Fatalf("append journal: %v", err)
	}

	if err := repo.ClearChatActive(ctx, id); err != nil {
		t.Fatalf("clear chat active: %v", err)
	}
	active, err = repo.ChatActive(ctx, id)
	if err != nil {
		t.Fatalf("chat active lookup: %v", err)
	}
	if active {
		t.Fatal("expected inactive after clear")
	}

	gotMood, err := repo.Mood(ctx, id)
	if err != nil {
		t.Fatalf("mood lookup: %v", err)
	}
	if gotMood == nil || gotMood.Text != "Calm" {
		t.Errorf("mood lost after clearing chat flag: %+v", gotMood)
	}
	entries, err := repo.Journal(ctx, id)
	if err != nil {
		t.Fatalf("journal lookup: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("journal lost after clearing chat flag: %d entries", len(entries))
	}
}

func testConversationIsolation(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	a := domain.ConversationID(1)
	b := domain.ConversationID(2)

	if err := repo.SetMood(ctx, a, domain.MoodEntry{Text: "Happy", Timestamp: "2025-01-01 10:00:00"}); err != nil {
		t.Fatalf("set mood: %v", err)
	}
	if err := repo.AppendJournal(ctx, a, domain.JournalEntry{Text: "a only", Timestamp: "2025-01-01 10:00:00"}); err != nil {
		t.Fatalf("append journal: %v", err)
	}

	mood, err := repo.Mood(ctx, b)
	if err != nil {
		t.Fatalf("mood lookup: %v", err)
	}
	if mood != nil {
		t.Errorf("mood leaked across conversations: %+v", mood)
	}
	entries, err := repo.Journal(ctx, b)
	if err != nil {
		t.Fatalf("journal lookup: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("journal leaked across conversations: %d entries", len(entries))
	}
}
