package usecase

import (
	"context"
	"sync"
)

// fakeAI records prompts and replays a canned answer or error
type fakeAI struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error

	// block, when set, holds GenerateAnswer until closed or ctx ends
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAI) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

func (f *fakeAI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// fakeKnowledge fixed passages or error, recording queries
type fakeKnowledge struct {
	passages []string
	err      error
	queries  []string
}

func (f *fakeKnowledge) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.passages[:min(k, len(f.passages))], nil
}
