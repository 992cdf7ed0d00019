package entity

import "time"

// Session explicitly owned per-user state. The conversation log is stored
// separately under the same ID.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	Quiz         QuizAnswers
	Routine      []RoutineItem
}

// Clone deep copy, so callers never share slices with the store
func (s Session) Clone() Session {
	out := s
	out.Quiz.Concerns = append([]string(nil), s.Quiz.Concerns...)
	out.Routine = append([]RoutineItem(nil), s.Routine...)
	if s.Quiz.CompletedAt != nil {
		t := *s.Quiz.CompletedAt
		out.Quiz.CompletedAt = &t
	}
	return out
}
