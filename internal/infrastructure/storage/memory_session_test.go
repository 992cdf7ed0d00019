package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

func TestMemorySessionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, entity.Session{ID: "s1", CreatedAt: now, LastActivity: now, Routine: entity.DefaultRoutine()}))
	assert.Error(t, repo.Create(ctx, entity.Session{ID: "s1"}), "duplicate id")

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Routine, 8)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), repository.ErrSessionNotFound)
}

func TestMemorySessionRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	require.NoError(t, repo.Create(ctx, entity.Session{ID: "s1", Routine: entity.DefaultRoutine()}))

	updated, err := repo.Update(ctx, "s1", func(s *entity.Session) error {
		s.Quiz.SkinType = "dry"
		s.Routine[0].Completed = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dry", updated.Quiz.SkinType)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, "s1", func(s *entity.Session) error {
		s.Quiz.SkinType = "oily"
		s.Routine[1].Completed = true
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "dry", got.Quiz.SkinType, "failed update must not be stored")
	assert.True(t, got.Routine[0].Completed)
	assert.False(t, got.Routine[1].Completed, "failed update must not leak through shared slices")

	_, err = repo.Update(ctx, "missing", func(*entity.Session) error { return nil })
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestMemorySessionRepositoryListIdle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, entity.Session{ID: "old", LastActivity: now.Add(-2 * time.Hour)}))
	require.NoError(t, repo.Create(ctx, entity.Session{ID: "fresh", LastActivity: now}))

	ids, err := repo.ListIdle(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids)
}

func TestMemoryLeaderboardRepository(t *testing.T) {
	repo := NewMemoryLeaderboardRepository(SeedLeaderboard())

	week, err := repo.List(context.Background(), entity.TimeFrameWeek)
	require.NoError(t, err)
	assert.Len(t, week, 8)

	week[0].Name = "changed"
	again, err := repo.List(context.Background(), entity.TimeFrameWeek)
	require.NoError(t, err)
	assert.Equal(t, "SkinQueen23", again[0].Name)
}
