package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

var (
	ErrUnknownQuestion = errors.New("unknown quiz question")
	ErrInvalidOption   = errors.New("invalid quiz option")
	ErrQuizIncomplete  = errors.New("quiz is not complete")
)

// QuizUseCase onboarding quiz; answers live on the session only
type QuizUseCase interface {
	// Questions quiz steps in order
	Questions() []entity.QuizQuestion

	// Answer sets a single-choice answer or toggles a multiple-choice one
	Answer(ctx context.Context, sessionID, questionID, value string) (entity.QuizAnswers, error)

	// Answers current answers of a session
	Answers(ctx context.Context, sessionID string) (entity.QuizAnswers, error)

	// CanProceed whether the given step has an answer
	CanProceed(answers entity.QuizAnswers, step int) bool

	// Complete marks the quiz done once every step is answered
	Complete(ctx context.Context, sessionID string) (entity.QuizAnswers, error)
}

type quizUseCase struct {
	sessionRepo repository.SessionRepository
	questions   []entity.QuizQuestion
}

// NewQuizUseCase quiz over the session store
func NewQuizUseCase(sessionRepo repository.SessionRepository) QuizUseCase {
	return &quizUseCase{
		sessionRepo: sessionRepo,
		questions:   entity.QuizQuestions(),
	}
}

func (u *quizUseCase) Questions() []entity.QuizQuestion {
	return entity.QuizQuestions()
}

func (u *quizUseCase) Answer(ctx context.Context, sessionID, questionID, value string) (entity.QuizAnswers, error) {
	q, ok := u.question(questionID)
	if !ok {
		return entity.QuizAnswers{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if !q.HasOption(value) {
		return entity.QuizAnswers{}, fmt.Errorf("%w: %q for %s", ErrInvalidOption, value, questionID)
	}

	session, err := u.sessionRepo.Update(ctx, sessionID, func(s *entity.Session) error {
		applyAnswer(&s.Quiz, q, value)
		s.LastActivity = time.Now().UTC()
		return nil
	})
	if err != nil {
		return entity.QuizAnswers{}, err
	}
	return session.Quiz, nil
}

func (u *quizUseCase) Answers(ctx context.Context, sessionID string) (entity.QuizAnswers, error) {
	session, err := u.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return entity.QuizAnswers{}, err
	}
	return session.Quiz, nil
}

func (u *quizUseCase) CanProceed(answers entity.QuizAnswers, step int) bool {
	if step < 0 || step >= len(u.questions) {
		return false
	}
	switch u.questions[step].ID {
	case entity.QuestionSkinType:
		return answers.SkinType != ""
	case entity.QuestionConcerns:
		return len(answers.Concerns) > 0
	case entity.QuestionWeather:
		return answers.Weather != ""
	case entity.QuestionLifestyle:
		return answers.Lifestyle != ""
	}
	return false
}

func (u *quizUseCase) Complete(ctx context.Context, sessionID string) (entity.QuizAnswers, error) {
	session, err := u.sessionRepo.Update(ctx, sessionID, func(s *entity.Session) error {
		for step := range u.questions {
			if !u.CanProceed(s.Quiz, step) {
				return fmt.Errorf("%w: %s unanswered", ErrQuizIncomplete, u.questions[step].ID)
			}
		}
		now := time.Now().UTC()
		s.Quiz.CompletedAt = &now
		s.LastActivity = now
		return nil
	})
	if err != nil {
		return entity.QuizAnswers{}, err
	}
	return session.Quiz, nil
}

func (u *quizUseCase) question(id string) (entity.QuizQuestion, bool) {
	for _, q := range u.questions {
		if q.ID == id {
			return q, true
		}
	}
	return entity.QuizQuestion{}, false
}

func applyAnswer(a *entity.QuizAnswers, q entity.QuizQuestion, value string) {
	switch q.ID {
	case entity.QuestionSkinType:
		a.SkinType = value
	case entity.QuestionWeather:
		a.Weather = value
	case entity.QuestionLifestyle:
		a.Lifestyle = value
	case entity.QuestionConcerns:
		if i := slices.Index(a.Concerns, value); i >= 0 {
			a.Concerns = slices.Delete(a.Concerns, i, i+1)
		} else {
			a.Concerns = append(a.Concerns, value)
		}
	}
	// changing an answer reopens a completed quiz
	a.CompletedAt = nil
}
