package repository

import (
	"context"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// ChatRepository append-only conversation log, one per session
type ChatRepository interface {
	// SaveMessage appends a message to its session log
	SaveMessage(ctx context.Context, message entity.Message) error

	// GetHistory last limit messages of a session, oldest first (limit <= 0: all retained)
	GetHistory(ctx context.Context, sessionID string, limit int) ([]entity.Message, error)

	// Count retained messages of a session
	Count(ctx context.Context, sessionID string) (int, error)

	// ClearHistory drops a session log
	ClearHistory(ctx context.Context, sessionID string) error

	// ClearAll drops every log
	ClearAll(ctx context.Context) error
}
