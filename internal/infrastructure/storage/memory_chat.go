package storage

import (
	"context"
	"sync"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

type memoryChatRepository struct {
	mu      sync.RWMutex
	logs    map[string][]entity.Message
	maxSize int
}

// NewMemoryChatRepository in-memory chat log keeping at most maxSize
// messages per session (maxSize <= 0: unbounded)
func NewMemoryChatRepository(maxSize int) repository.ChatRepository {
	return &memoryChatRepository{
		logs:    make(map[string][]entity.Message),
		maxSize: maxSize,
	}
}

// SaveMessage append to the session log
func (m *memoryChatRepository) SaveMessage(ctx context.Context, message entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := append(m.logs[message.SessionID], message)

	// enforce the retention cap
	if m.maxSize > 0 && len(log) > m.maxSize {
		trimmed := make([]entity.Message, m.maxSize)
		copy(trimmed, log[len(log)-m.maxSize:])
		log = trimmed
	}

	m.logs[message.SessionID] = log
	return nil
}

// GetHistory copy of the last limit messages, oldest first
func (m *memoryChatRepository) GetHistory(ctx context.Context, sessionID string, limit int) ([]entity.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := m.logs[sessionID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	out := make([]entity.Message, len(messages))
	copy(out, messages)
	return out, nil
}

func (m *memoryChatRepository) Count(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs[sessionID]), nil
}

// ClearHistory drop one session log
func (m *memoryChatRepository) ClearHistory(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.logs, sessionID)
	return nil
}

// ClearAll drop every log
func (m *memoryChatRepository) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = make(map[string][]entity.Message)
	return nil
}
