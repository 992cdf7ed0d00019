package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

var _ repository.ChatRepository = (*SQLiteChatRepository)(nil)

// SQLiteChatRepository conversation logs in a SQLite file, trimmed to maxSize per session
type SQLiteChatRepository struct {
	db      *sql.DB
	maxSize int
}

// NewSQLiteChatRepository opens (and if needed creates) the database at dbPath
func NewSQLiteChatRepository(dbPath string, maxSize int) (*SQLiteChatRepository, error) {
	if dbPath == "" {
		return nil, errors.New("db path must not be empty")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	if err := createChatSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteChatRepository{db: db, maxSize: maxSize}, nil
}

func createChatSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS messages (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL,
	text TEXT NOT NULL,
	from_assistant INTEGER NOT NULL,
	ts TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages (session_id, seq);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveMessage appends the message and trims the session to maxSize in one transaction
func (s *SQLiteChatRepository) SaveMessage(ctx context.Context, message entity.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO messages (id, session_id, text, from_assistant, ts) VALUES (?, ?, ?, ?, ?)`,
		message.ID, message.SessionID, message.Text, message.IsFromAssistant, message.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if s.maxSize > 0 {
		_, err = tx.ExecContext(ctx, `
DELETE FROM messages
WHERE seq IN (
  SELECT seq FROM messages
  WHERE session_id = ?
  ORDER BY seq DESC
  LIMIT -1 OFFSET ?
)`, message.SessionID, s.maxSize)
		if err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}

	return tx.Commit()
}

// GetHistory last limit messages of a session, oldest first
func (s *SQLiteChatRepository) GetHistory(ctx context.Context, sessionID string, limit int) ([]entity.Message, error) {
	query := `SELECT id, session_id, text, from_assistant, ts FROM messages WHERE session_id = ? ORDER BY seq DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []entity.Message{}
	for rows.Next() {
		var msg entity.Message
		var ts time.Time
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Text, &msg.IsFromAssistant, &ts); err != nil {
			return nil, err
		}
		msg.Timestamp = ts.UTC()
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest-first from the query; callers expect chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *SQLiteChatRepository) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// ClearHistory drops one session log
func (s *SQLiteChatRepository) ClearHistory(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}

// ClearAll drops every log
func (s *SQLiteChatRepository) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	return err
}

// Close closes the database
func (s *SQLiteChatRepository) Close() error {
	return s.db.Close()
}
