package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

// Fixed replies for degraded remote outcomes
const (
	NoAnswerReply       = "Sorry, I couldn't find an answer."
	GenericFailureReply = "Sorry, there was an error reaching the assistant."
	MisconfiguredReply  = "Sorry, the assistant is not configured right now. Please try again later."
	ServiceErrorTag     = "Gemini API error: "
)

// MatchedRevealDelay simulated thinking time for canned replies
const MatchedRevealDelay = time.Second

// GuidePassages passages retrieved from the knowledge guide per question
const GuidePassages = 3

// Source where a reply came from
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceRemote  Source = "remote"
)

// Outcome classification of a resolution
type Outcome string

const (
	OutcomeMatched          Outcome = "matched"
	OutcomeAnswered         Outcome = "answered"
	OutcomeNoAnswer         Outcome = "no_answer"
	OutcomeServiceError     Outcome = "service_error"
	OutcomeTransportFailure Outcome = "transport_failure"
	OutcomeMisconfigured    Outcome = "misconfigured"
)

// Resolution final display text plus how it was produced
type Resolution struct {
	Text        string
	Source      Source
	Outcome     Outcome
	RevealDelay time.Duration
}

// Matched reports whether a keyword rule produced the reply
func (r Resolution) Matched() bool {
	return r.Outcome == OutcomeMatched
}

// ResolutionObserver receives one call per resolution
type ResolutionObserver interface {
	ObserveResolution(res Resolution, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(Resolution, time.Duration) {}

// Resolver picks a canned keyword reply or falls back to the AI service
type Resolver struct {
	ai       repository.AIRepository
	rules    []entity.KeywordRule
	logger   *zap.Logger
	observer ResolutionObserver

	knowledge repository.KnowledgeRetriever
}

// NewResolver rules are copied and consulted in the given order
func NewResolver(ai repository.AIRepository, rules []entity.KeywordRule, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make([]entity.KeywordRule, 0, len(rules))
	for _, r := range rules {
		r.Trigger = strings.ToLower(r.Trigger)
		if r.Trigger == "" {
			continue
		}
		copied = append(copied, r)
	}
	return &Resolver{ai: ai, rules: copied, logger: logger.Named("resolver"), observer: nopObserver{}}
}

// SetObserver installs o; nil restores the no-op observer
func (r *Resolver) SetObserver(o ResolutionObserver) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// SetKnowledge grounds remote prompts in passages from k; nil turns it off
func (r *Resolver) SetKnowledge(k repository.KnowledgeRetriever) {
	r.knowledge = k
}

// Rules the active rule set in declared order
func (r *Resolver) Rules() []entity.KeywordRule {
	return append([]entity.KeywordRule(nil), r.rules...)
}

// Match first rule whose trigger occurs in the lowercased utterance
func (r *Resolver) Match(utterance string) (entity.KeywordRule, bool) {
	lower := strings.ToLower(utterance)
	for _, rule := range r.rules {
		if strings.Contains(lower, rule.Trigger) {
			return rule, true
		}
	}
	return entity.KeywordRule{}, false
}

// Resolve never fails: every error is turned into reply text.
// history is only read.
func (r *Resolver) Resolve(ctx context.Context, utterance string, history []entity.Message) Resolution {
	start := time.Now()
	res := r.resolve(ctx, utterance, history)
	r.observer.ObserveResolution(res, time.Since(start))
	return res
}

func (r *Resolver) resolve(ctx context.Context, utterance string, history []entity.Message) Resolution {
	if rule, ok := r.Match(utterance); ok {
		return Resolution{
			Text:        rule.Response,
			Source:      SourceKeyword,
			Outcome:     OutcomeMatched,
			RevealDelay: MatchedRevealDelay,
		}
	}

	prompt := BuildGuidedPrompt(utterance, history, r.guide(ctx, utterance))
	answer, err := r.ai.GenerateAnswer(ctx, prompt)
	if err == nil {
		return Resolution{Text: answer, Source: SourceRemote, Outcome: OutcomeAnswered}
	}

	res := Resolution{Source: SourceRemote}
	var apiErr *repository.APIError
	switch {
	case errors.Is(err, repository.ErrMissingAPIKey):
		r.logger.Error("remote assistant unavailable: no api key configured")
		res.Outcome, res.Text = OutcomeMisconfigured, MisconfiguredReply
	case errors.Is(err, repository.ErrNoAnswer):
		r.logger.Warn("remote answer missing", zap.Error(err))
		res.Outcome, res.Text = OutcomeNoAnswer, NoAnswerReply
	case errors.As(err, &apiErr):
		r.logger.Warn("remote service error", zap.Int("status", apiErr.StatusCode), zap.String("message", apiErr.Message))
		res.Outcome, res.Text = OutcomeServiceError, GenericFailureReply
		if apiErr.Message != "" {
			res.Text = ServiceErrorTag + apiErr.Message
		}
	default:
		r.logger.Warn("remote call failed", zap.Error(err))
		res.Outcome, res.Text = OutcomeTransportFailure, GenericFailureReply
	}
	return res
}

// guide passages for the utterance; a failed lookup only drops the guide
func (r *Resolver) guide(ctx context.Context, utterance string) []string {
	if r.knowledge == nil {
		return nil
	}
	passages, err := r.knowledge.Retrieve(ctx, utterance, GuidePassages)
	if err != nil {
		r.logger.Warn("guide lookup failed", zap.Error(err))
		return nil
	}
	return passages
}
