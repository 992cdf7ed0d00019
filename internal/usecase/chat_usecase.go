package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionBusy     = errors.New("a message is already being answered for this session")
	ErrSessionNotFound = repository.ErrSessionNotFound

	// ErrSessionEnded the session was ended while its reply was pending
	ErrSessionEnded = fmt.Errorf("session ended while answering: %w", ErrSessionNotFound)
)

// DefaultResolveTimeout bound on one resolution, remote call included
const DefaultResolveTimeout = 20 * time.Second

// Reply the accepted user message and the single assistant message paired with it
type Reply struct {
	UserMessage      entity.Message
	AssistantMessage entity.Message
	Resolution       Resolution
}

// ChatUseCase assistant chat business logic
type ChatUseCase interface {
	StartSession(ctx context.Context) (entity.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	ProcessMessage(ctx context.Context, sessionID, text string) (Reply, error)
	History(ctx context.Context, sessionID string) ([]entity.Message, error)
	QuickReplies() []string
	ExpireIdle(ctx context.Context, ttl time.Duration) (int, error)
}

type chatUseCase struct {
	resolver    *Resolver
	chatRepo    repository.ChatRepository
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
	timeout     time.Duration

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight one in-progress submission. ended is set when the session is
// discarded underneath it.
type flight struct {
	cancel context.CancelFunc
	ended  bool
}

// NewChatUseCase timeout <= 0 selects DefaultResolveTimeout
func NewChatUseCase(
	resolver *Resolver,
	chatRepo repository.ChatRepository,
	sessionRepo repository.SessionRepository,
	logger *zap.Logger,
	timeout time.Duration,
) ChatUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &chatUseCase{
		resolver:    resolver,
		chatRepo:    chatRepo,
		sessionRepo: sessionRepo,
		logger:      logger.Named("chat"),
		timeout:     timeout,
		inflight:    make(map[string]*flight),
	}
}

// StartSession new session seeded with the greeting message
func (u *chatUseCase) StartSession(ctx context.Context) (entity.Session, error) {
	now := time.Now().UTC()
	session := entity.Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Routine:      entity.DefaultRoutine(),
	}

	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return entity.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	if err := u.chatRepo.SaveMessage(ctx, entity.NewAssistantMessage(session.ID, entity.GreetingText)); err != nil {
		return entity.Session{}, fmt.Errorf("failed to save greeting: %w", err)
	}

	u.logger.Debug("session started", zap.String("session", session.ID))
	return session, nil
}

// EndSession discards the session and its conversation log. A reply still
// being resolved for it is abandoned and never lands in the log.
func (u *chatUseCase) EndSession(ctx context.Context, sessionID string) error {
	u.abandon(sessionID)
	return u.discard(ctx, sessionID)
}

func (u *chatUseCase) discard(ctx context.Context, sessionID string) error {
	if err := u.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := u.chatRepo.ClearHistory(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	u.logger.Debug("session ended", zap.String("session", sessionID))
	return nil
}

// ProcessMessage appends the user message, resolves a reply and appends
// exactly one assistant message.
func (u *chatUseCase) ProcessMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyMessage
	}

	flightCtx, cancelFlight := context.WithCancel(ctx)
	defer cancelFlight()

	f := u.begin(sessionID, cancelFlight)
	if f == nil {
		return Reply{}, ErrSessionBusy
	}
	defer u.end(sessionID)

	// Looked up after claiming the flight so a concurrent EndSession either
	// wins here or marks the flight ended.
	if _, err := u.sessionRepo.Get(ctx, sessionID); err != nil {
		return Reply{}, err
	}

	history, err := u.chatRepo.GetHistory(ctx, sessionID, WindowSize)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to get history: %w", err)
	}

	userMsg := entity.NewUserMessage(sessionID, text)
	if err := u.chatRepo.SaveMessage(ctx, userMsg); err != nil {
		return Reply{}, fmt.Errorf("failed to save message: %w", err)
	}

	// From here on the pair must be completed even if the caller goes away.
	persistCtx := context.WithoutCancel(ctx)

	resolveCtx, cancel := context.WithTimeout(flightCtx, u.timeout)
	res := u.resolver.Resolve(resolveCtx, text, history)
	cancel()

	botMsg := entity.NewAssistantMessage(sessionID, res.Text)
	if err := u.chatRepo.SaveMessage(persistCtx, botMsg); err != nil {
		return Reply{}, fmt.Errorf("failed to save reply: %w", err)
	}

	// EndSession marks the flight before clearing, so whichever side runs
	// last removes the pair.
	if u.isEnded(f) {
		if err := u.chatRepo.ClearHistory(persistCtx, sessionID); err != nil {
			u.logger.Warn("failed to clear abandoned reply", zap.String("session", sessionID), zap.Error(err))
		}
		u.logger.Debug("reply abandoned, session ended", zap.String("session", sessionID))
		return Reply{}, ErrSessionEnded
	}

	if _, err := u.sessionRepo.Update(persistCtx, sessionID, func(s *entity.Session) error {
		s.LastActivity = time.Now().UTC()
		return nil
	}); err != nil && !errors.Is(err, ErrSessionNotFound) {
		u.logger.Warn("failed to touch session", zap.String("session", sessionID), zap.Error(err))
	}

	u.logger.Info("message answered",
		zap.String("session", sessionID),
		zap.String("source", string(res.Source)),
		zap.String("outcome", string(res.Outcome)))

	return Reply{UserMessage: userMsg, AssistantMessage: botMsg, Resolution: res}, nil
}

// History full retained log of a session
func (u *chatUseCase) History(ctx context.Context, sessionID string) ([]entity.Message, error) {
	if _, err := u.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return u.chatRepo.GetHistory(ctx, sessionID, 0)
}

// QuickReplies suggested opening questions
func (u *chatUseCase) QuickReplies() []string {
	return entity.QuickReplies()
}

// ExpireIdle ends sessions idle for longer than ttl, skipping busy ones
func (u *chatUseCase) ExpireIdle(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	ids, err := u.sessionRepo.ListIdle(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list idle sessions: %w", err)
	}

	expired := 0
	for _, id := range ids {
		// Holding the flight keeps submissions out while the session goes.
		if u.begin(id, func() {}) == nil {
			continue
		}
		err := u.expireIfIdle(ctx, id, cutoff)
		u.end(id)
		if errors.Is(err, errStillActive) {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		u.logger.Info("idle sessions expired", zap.Int("count", expired))
	}
	return expired, nil
}

var errStillActive = errors.New("session active since listing")

// expireIfIdle must be called holding the session's flight
func (u *chatUseCase) expireIfIdle(ctx context.Context, sessionID string, cutoff time.Time) error {
	session, err := u.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.LastActivity.Before(cutoff) {
		return errStillActive
	}
	return u.discard(ctx, sessionID)
}

func (u *chatUseCase) begin(sessionID string, cancel context.CancelFunc) *flight {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, busy := u.inflight[sessionID]; busy {
		return nil
	}
	f := &flight{cancel: cancel}
	u.inflight[sessionID] = f
	return f
}

func (u *chatUseCase) end(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inflight, sessionID)
}

func (u *chatUseCase) abandon(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if f, ok := u.inflight[sessionID]; ok {
		f.ended = true
		f.cancel()
	}
}

func (u *chatUseCase) isEnded(f *flight) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return f.ended
}
