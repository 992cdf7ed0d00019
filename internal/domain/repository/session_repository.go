package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// ErrSessionNotFound no session with the given ID
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository owner of per-user session state
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session entity.Session) error

	// Get returns a copy of the session
	Get(ctx context.Context, id string) (entity.Session, error)

	// Update applies fn atomically; the session is stored only if fn returns nil
	Update(ctx context.Context, id string, fn func(*entity.Session) error) (entity.Session, error)

	// Delete discards the session
	Delete(ctx context.Context, id string) error

	// ListIdle IDs of sessions whose last activity is before the cutoff
	ListIdle(ctx context.Context, before time.Time) ([]string, error)
}
