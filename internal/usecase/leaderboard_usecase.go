package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

var ErrUnknownTimeFrame = errors.New("unknown time frame")

// LeaderboardUseCase ranked streak standings
type LeaderboardUseCase interface {
	List(ctx context.Context, tf entity.TimeFrame) ([]entity.LeaderboardEntry, error)
}

type leaderboardUseCase struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardUseCase(repo repository.LeaderboardRepository) LeaderboardUseCase {
	return &leaderboardUseCase{repo: repo}
}

// List entries ordered by streak, then consistency, then name; ranks 1..n
func (u *leaderboardUseCase) List(ctx context.Context, tf entity.TimeFrame) ([]entity.LeaderboardEntry, error) {
	if tf == "" {
		tf = entity.TimeFrameWeek
	}
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeFrame, tf)
	}

	entries, err := u.repo.List(ctx, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}

	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, func(a, b entity.LeaderboardEntry) int {
		if c := cmp.Compare(b.Streak, a.Streak); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ConsistencyPercent, a.ConsistencyPercent); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}
