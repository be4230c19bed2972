package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/sagemind/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. It exists so session state
// can be kept across restarts when an operator sets DB_PATH; the in-memory
// store remains the default.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS moods (
		conversation_id INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_conversation ON journal_entries(conversation_id, id);

	CREATE TABLE IF NOT EXISTS flow_states (
		conversation_id INTEGER PRIMARY KEY,
		state TEXT NOT NULL,
		entered_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_active (
		conversation_id INTEGER PRIMARY KEY
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Mood retrieves the last reported mood, or nil when none was reported.
func (s *SQLiteStore) Mood(ctx context.Context, id domain.ConversationID) (*domain.MoodEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT text, recorded_at FROM moods WHERE conversation_id = ?`, int64(id))

	var entry domain.MoodEntry
	err := row.Scan(&entry.Text, &entry.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan mood row: %w", err)
	}
	return &entry, nil
}

// SetMood records a mood report, replacing any previous one.
func (s *SQLiteStore) SetMood(ctx context.Context, id domain.ConversationID, entry domain.MoodEntry) error {
	query := `
	INSERT INTO moods (conversation_id, text, recorded_at)
	VALUES (?, ?, ?)
	ON CONFLICT(conversation_id) DO UPDATE SET
		text = excluded.text,
		recorded_at = excluded.recorded_at`

	if _, err := s.db.ExecContext(ctx, query, int64(id), entry.Text, entry.Timestamp); err != nil {
		return fmt.Errorf("upsert mood: %w", err)
	}
	return nil
}

// Journal retrieves all journal entries in arrival order.
func (s *SQLiteStore) Journal(ctx context.Context, id domain.ConversationID) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, recorded_at FROM journal_entries WHERE conversation_id = ? ORDER BY id`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(&entry.Text, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return entries, nil
}

// AppendJournal adds a journal entry after all existing ones.
func (s *SQLiteStore) AppendJournal(ctx context.Context, id domain.ConversationID, entry domain.JournalEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (conversation_id, text, recorded_at) VALUES (?, ?, ?)`,
		int64(id), entry.Text, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// FlowState retrieves the active flow state and the instant it was entered.
func (s *SQLiteStore) FlowState(ctx context.Context, id domain.ConversationID) (domain.FlowState, time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT state, entered_at FROM flow_states WHERE conversation_id = ?`, int64(id))

	var raw string
	var enteredAt int64
	err := row.Scan(&raw, &enteredAt)
	if err == sql.ErrNoRows {
		return domain.FlowIdle, time.Time{}, nil
	}
	if err != nil {
		return domain.FlowIdle, time.Time{}, fmt.Errorf("scan flow state row: %w", err)
	}
	return domain.ParseFlowState(raw), time.Unix(enteredAt, 0), nil
}

// SetFlowState records the active flow state.
func (s *SQLiteStore) SetFlowState(ctx context.Context, id domain.ConversationID, state domain.FlowState, enteredAt time.Time) error {
	if state == domain.FlowIdle {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM flow_states WHERE conversation_id = ?`, int64(id)); err != nil {
			return fmt.Errorf("clear flow state: %w", err)
		}
		return nil
	}

	query := `
	INSERT INTO flow_states (conversation_id, state, entered_at)
	VALUES (?, ?, ?)
	ON CONFLICT(conversation_id) DO UPDATE SET
		state = excluded.state,
		entered_at = excluded.entered_at`

	if _, err := s.db.ExecContext(ctx, query, int64(id), state.String(), enteredAt.Unix()); err != nil {
		return fmt.Errorf("upsert flow state: %w", err)
	}
	return nil
}

// ChatActive reports whether the conversation has an active chat flag.
func (s *SQLiteStore) ChatActive(ctx context.Context, id domain.ConversationID) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_active WHERE conversation_id = ?`, int64(id))

	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scan chat_active row: %w", err)
	}
	return true, nil
}

// SetChatActive marks the conversation as having an active chat.
func (s *SQLiteStore) SetChatActive(ctx context.Context, id domain.ConversationID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_active (conversation_id) VALUES (?) ON CONFLICT(conversation_id) DO NOTHING`, int64(id))
	if err != nil {
		return fmt.Errorf("set chat_active: %w", err)
	}
	return nil
}

// ClearChatActive removes the chat-active flag.
func (s *SQLiteStore) ClearChatActive(ctx context.Context, id domain.ConversationID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_active WHERE conversation_id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("clear chat_active: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
