package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

// NewMemorySessionRepository in-memory session store
func NewMemorySessionRepository() repository.SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]entity.Session),
	}
}

func (m *memorySessionRepository) Create(ctx context.Context, session entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *memorySessionRepository) Get(ctx context.Context, id string) (entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return entity.Session{}, repository.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update fn works on a copy; the copy replaces the stored session only on success
func (m *memorySessionRepository) Update(ctx context.Context, id string, fn func(*entity.Session) error) (entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return entity.Session{}, repository.ErrSessionNotFound
	}

	working := session.Clone()
	if err := fn(&working); err != nil {
		return entity.Session{}, err
	}
	working.ID = id
	m.sessions[id] = working
	return working.Clone(), nil
}

func (m *memorySessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memorySessionRepository) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, s := range m.sessions {
		if s.LastActivity.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
