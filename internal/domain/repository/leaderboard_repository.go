package repository

import (
	"context"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
)

// LeaderboardRepository streak standings
type LeaderboardRepository interface {
	// List entries for a time frame, unranked order
	List(ctx context.Context, tf entity.TimeFrame) ([]entity.LeaderboardEntry, error)
}
