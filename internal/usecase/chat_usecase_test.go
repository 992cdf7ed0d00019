package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/storage"
)

type chatFixture struct {
	ai       *fakeAI
	chat     ChatUseCase
	chatRepo repository.ChatRepository
	sessions repository.SessionRepository
}

func newChatFixture(t *testing.T, ai *fakeAI) chatFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	chatRepo := storage.NewMemoryChatRepository(50)
	sessions := storage.NewMemorySessionRepository()
	resolver := NewResolver(ai, entity.DefaultKeywordRules(), logger)
	return chatFixture{
		ai:       ai,
		chat:     NewChatUseCase(resolver, chatRepo, sessions, logger, time.Second),
		chatRepo: chatRepo,
		sessions: sessions,
	}
}

func TestStartSessionSeedsGreeting(t *testing.T) {
	f := newChatFixture(t, &fakeAI{})
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Len(t, session.Routine, 8)

	msgs, err := f.chat.History(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.GreetingText, msgs[0].Text)
	assert.True(t, msgs[0].IsFromAssistant)
	assert.Len(t, f.chat.QuickReplies(), 4)
}

func TestProcessMessagePairsReplies(t *testing.T) {
	f := newChatFixture(t, &fakeAI{answer: "Use a ceramide cream."})
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	reply, err := f.chat.ProcessMessage(ctx, session.ID, "SPF recommendations")
	require.NoError(t, err)
	assert.True(t, reply.Resolution.Matched())
	assert.Equal(t, "SPF recommendations", reply.UserMessage.Text)
	assert.False(t, reply.UserMessage.IsFromAssistant)
	assert.True(t, reply.AssistantMessage.IsFromAssistant)

	reply, err = f.chat.ProcessMessage(ctx, session.ID, "my skin feels tight")
	require.NoError(t, err)
	assert.Equal(t, "Use a ceramide cream.", reply.AssistantMessage.Text)

	msgs, err := f.chat.History(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs[1:] {
		assert.Equal(t, i%2 == 1, m.IsFromAssistant, "message %d", i+1)
	}

	// the remote prompt saw the earlier turns but not the current utterance twice
	calls := f.ai.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "User: SPF recommendations\n")
	assert.Equal(t, 1, strings.Count(calls[0], "my skin feels tight"))
}

func TestProcessMessageFailureStillAppendsOneReply(t *testing.T) {
	f := newChatFixture(t, &fakeAI{err: errors.New("connection reset")})
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	reply, err := f.chat.ProcessMessage(ctx, session.ID, "what is azelaic acid?")
	require.NoError(t, err)
	assert.Equal(t, GenericFailureReply, reply.AssistantMessage.Text)

	n, err := f.chatRepo.Count(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProcessMessageRejectsEmpty(t *testing.T) {
	f := newChatFixture(t, &fakeAI{})
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.chat.ProcessMessage(ctx, session.ID, text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	n, err := f.chatRepo.Count(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the greeting")
	assert.Empty(t, f.ai.calls())
}

func TestProcessMessageUnknownSession(t *testing.T) {
	f := newChatFixture(t, &fakeAI{})
	_, err := f.chat.ProcessMessage(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.chat.History(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestProcessMessageSingleFlight(t *testing.T) {
	ai := &fakeAI{answer: "done", block: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := newChatFixture(t, ai)
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	type result struct {
		reply Reply
		err   error
	}
	first := make(chan result, 1)
	go func() {
		reply, err := f.chat.ProcessMessage(ctx, session.ID, "what is bakuchiol?")
		first <- result{reply, err}
	}()
	<-ai.entered

	_, err = f.chat.ProcessMessage(ctx, session.ID, "and squalane?")
	assert.ErrorIs(t, err, ErrSessionBusy)

	// a busy session is never expired
	expired, err := f.chat.ExpireIdle(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired)

	close(ai.block)
	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, "done", got.reply.AssistantMessage.Text)

	n, err := f.chatRepo.Count(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProcessMessageTimeout(t *testing.T) {
	ai := &fakeAI{block: make(chan struct{})}
	logger := zaptest.NewLogger(t)
	chatRepo := storage.NewMemoryChatRepository(0)
	sessions := storage.NewMemorySessionRepository()
	chat := NewChatUseCase(NewResolver(ai, nil, logger), chatRepo, sessions, logger, 20*time.Millisecond)

	session, err := chat.StartSession(context.Background())
	require.NoError(t, err)

	reply, err := chat.ProcessMessage(context.Background(), session.ID, "slow question")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransportFailure, reply.Resolution.Outcome)
	assert.Equal(t, GenericFailureReply, reply.AssistantMessage.Text)
}

func TestProcessMessageCompletesPairAfterCancel(t *testing.T) {
	ai := &fakeAI{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := newChatFixture(t, ai)

	session, err := f.chat.StartSession(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.chat.ProcessMessage(ctx, session.ID, "question")
		done <- err
	}()
	<-ai.entered
	cancel()
	require.NoError(t, <-done)

	msgs, err := f.chatRepo.GetHistory(context.Background(), session.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, GenericFailureReply, msgs[2].Text)
}

func TestEndSessionAndExpireIdle(t *testing.T) {
	f := newChatFixture(t, &fakeAI{})
	ctx := context.Background()

	a, err := f.chat.StartSession(ctx)
	require.NoError(t, err)
	b, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.chat.EndSession(ctx, a.ID))
	assert.ErrorIs(t, f.chat.EndSession(ctx, a.ID), ErrSessionNotFound)
	n, err := f.chatRepo.Count(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	expired, err := f.chat.ExpireIdle(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired, "fresh session stays")

	expired, err = f.chat.ExpireIdle(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	_, err = f.sessions.Get(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestEndSessionDuringReplyLeavesNoMessages(t *testing.T) {
	ai := &fakeAI{answer: "late answer", block: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := newChatFixture(t, ai)
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.chat.ProcessMessage(ctx, session.ID, "is niacinamide safe?")
		done <- err
	}()
	<-ai.entered

	require.NoError(t, f.chat.EndSession(ctx, session.ID))
	close(ai.block)

	err = <-done
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.sessions.Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	n, err := f.chatRepo.Count(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "ended session keeps no log")
}

func TestProcessMessageAfterEndSession(t *testing.T) {
	f := newChatFixture(t, &fakeAI{answer: "unused"})
	ctx := context.Background()

	session, err := f.chat.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, f.chat.EndSession(ctx, session.ID))

	_, err = f.chat.ProcessMessage(ctx, session.ID, "hello?")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, f.ai.calls())

	n, err := f.chatRepo.Count(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// staleListing lists every session as idle, like a listing taken just
// before fresh activity
type staleListing struct {
	repository.SessionRepository
	ids []string
}

func (s staleListing) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	return s.ids, nil
}

func TestExpireIdleRechecksActivity(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sessions := storage.NewMemorySessionRepository()
	chatRepo := storage.NewMemoryChatRepository(50)
	resolver := NewResolver(&fakeAI{}, nil, logger)

	seed := NewChatUseCase(resolver, chatRepo, sessions, logger, time.Second)
	session, err := seed.StartSession(context.Background())
	require.NoError(t, err)

	chat := NewChatUseCase(resolver, chatRepo, staleListing{SessionRepository: sessions, ids: []string{session.ID}}, logger, time.Second)
	expired, err := chat.ExpireIdle(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired)

	_, err = sessions.Get(context.Background(), session.ID)
	assert.NoError(t, err, "recently active session survives a stale listing")
}
