package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

var ErrUnknownRoutineItem = errors.New("unknown routine item")

// Dashboard routine checklist view
type Dashboard struct {
	Items    []entity.RoutineItem   `json:"items"`
	Progress entity.RoutineProgress `json:"progress"`
	Tips     []entity.Tip           `json:"tips"`
}

// RoutineUseCase daily checklist on the session
type RoutineUseCase interface {
	Dashboard(ctx context.Context, sessionID string) (Dashboard, error)
	Toggle(ctx context.Context, sessionID, itemID string) (Dashboard, error)
}

type routineUseCase struct {
	sessionRepo repository.SessionRepository
}

// NewRoutineUseCase checklist over the session store
func NewRoutineUseCase(sessionRepo repository.SessionRepository) RoutineUseCase {
	return &routineUseCase{sessionRepo: sessionRepo}
}

func (u *routineUseCase) Dashboard(ctx context.Context, sessionID string) (Dashboard, error) {
	session, err := u.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return Dashboard{}, err
	}
	return buildDashboard(session.Routine), nil
}

func (u *routineUseCase) Toggle(ctx context.Context, sessionID, itemID string) (Dashboard, error) {
	session, err := u.sessionRepo.Update(ctx, sessionID, func(s *entity.Session) error {
		for i := range s.Routine {
			if s.Routine[i].ID == itemID {
				s.Routine[i].Completed = !s.Routine[i].Completed
				s.LastActivity = time.Now().UTC()
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrUnknownRoutineItem, itemID)
	})
	if err != nil {
		return Dashboard{}, err
	}
	return buildDashboard(session.Routine), nil
}

func buildDashboard(items []entity.RoutineItem) Dashboard {
	return Dashboard{
		Items:    items,
		Progress: Progress(items),
		Tips:     entity.DailyTips(),
	}
}

// Progress returns the completion percent for morning, evening and all items.
// An empty group counts as 0%.
func Progress(items []entity.RoutineItem) entity.RoutineProgress {
	var morning, morningDone, evening, eveningDone int
	for _, it := range items {
		switch it.TimeOfDay {
		case entity.Morning:
			morning++
			if it.Completed {
				morningDone++
			}
		case entity.Evening:
			evening++
			if it.Completed {
				eveningDone++
			}
		}
	}
	return entity.RoutineProgress{
		Morning: percent(morningDone, morning),
		Evening: percent(eveningDone, evening),
		Total:   percent(morningDone+eveningDone, morning+evening),
	}
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
