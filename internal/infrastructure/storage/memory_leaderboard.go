package storage

import (
	"context"
	"sync"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

type memoryLeaderboardRepository struct {
	mu      sync.RWMutex
	entries map[entity.TimeFrame][]entity.LeaderboardEntry
}

// NewMemoryLeaderboardRepository standings seeded with the same entries for every time frame
func NewMemoryLeaderboardRepository(seed []entity.LeaderboardEntry) repository.LeaderboardRepository {
	entries := make(map[entity.TimeFrame][]entity.LeaderboardEntry, 3)
	for _, tf := range []entity.TimeFrame{entity.TimeFrameWeek, entity.TimeFrameMonth, entity.TimeFrameAll} {
		entries[tf] = append([]entity.LeaderboardEntry(nil), seed...)
	}
	return &memoryLeaderboardRepository{entries: entries}
}

func (m *memoryLeaderboardRepository) List(ctx context.Context, tf entity.TimeFrame) ([]entity.LeaderboardEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]entity.LeaderboardEntry(nil), m.entries[tf]...), nil
}

// SeedLeaderboard demo standings
func SeedLeaderboard() []entity.LeaderboardEntry {
	return []entity.LeaderboardEntry{
		{ID: "1", Name: "SkinQueen23", Avatar: "👑", Streak: 28, ConsistencyPercent: 96},
		{ID: "2", Name: "GlowGetter", Avatar: "✨", Streak: 21, ConsistencyPercent: 94},
		{ID: "3", Name: "RoutiineRebel", Avatar: "🌟", Streak: 19, ConsistencyPercent: 92},
		{ID: "4", Name: "SkincareStar", Avatar: "💫", Streak: 15, ConsistencyPercent: 89},
		{ID: "5", Name: "You", Avatar: "💕", Streak: 12, ConsistencyPercent: 87},
		{ID: "6", Name: "RadiantRose", Avatar: "🌹", Streak: 11, ConsistencyPercent: 85},
		{ID: "7", Name: "GlowUpGuru", Avatar: "🔥", Streak: 9, ConsistencyPercent: 82},
		{ID: "8", Name: "SkinSuccess", Avatar: "🏆", Streak: 8, ConsistencyPercent: 80},
	}
}
