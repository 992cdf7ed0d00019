package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

// maxEmbedBatch request limit of batchEmbedContents
const maxEmbedBatch = 100

// SDKClient backend built on the generative-ai-go SDK. The underlying client
// is created on first use, so a missing key fails the call, not startup.
type SDKClient struct {
	cfg      Config
	opts     []option.ClientOption
	throttle *throttle
	logger   *zap.Logger

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewSDKClient SDK backend; extra options are appended after the API key
func NewSDKClient(cfg Config, logger *zap.Logger, opts ...option.ClientOption) *SDKClient {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SDKClient{
		cfg:      cfg,
		opts:     opts,
		throttle: newThrottle(cfg.MaxConcurrent, cfg.MinInterval),
		logger:   logger.Named("gemini-sdk"),
	}
}

// GenerateAnswer sends the prompt as a single text part
func (s *SDKClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	model, err := s.generativeModel(ctx)
	if err != nil {
		return "", err
	}

	release, err := s.throttle.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("waiting for request slot: %w", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", translateSDKError(err)
	}

	text, ok := extractSDKText(resp)
	if !ok {
		return "", repository.ErrNoAnswer
	}
	return text, nil
}

func (s *SDKClient) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureClient(ctx); err != nil {
		return nil, err
	}
	if s.model == nil {
		s.model = s.client.GenerativeModel(s.cfg.Model)
	}
	return s.model, nil
}

// ensureClient must be called with s.mu held
func (s *SDKClient) ensureClient(ctx context.Context) error {
	if s.cfg.APIKey == "" {
		return repository.ErrMissingAPIKey
	}
	if s.client != nil {
		return nil
	}

	opts := append([]option.ClientOption{option.WithAPIKey(s.cfg.APIKey)}, s.opts...)
	client, err := genai.NewClient(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s.client = client
	s.logger.Info("gemini sdk client initialized", zap.String("model", s.cfg.Model))
	return nil
}

// Embed one embedding per text from the configured embedding model
func (s *SDKClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	err := s.ensureClient(ctx)
	var em *genai.EmbeddingModel
	if err == nil {
		em = s.client.EmbeddingModel(s.cfg.EmbeddingModel)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		release, err := s.throttle.acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		release()
		if err != nil {
			return nil, translateSDKError(err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				return nil, fmt.Errorf("%w: empty embedding", repository.ErrNoAnswer)
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// Close releases the SDK client if one was created
func (s *SDKClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.model = nil
	return err
}

func translateSDKError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &repository.APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", repository.ErrNoAnswer, err)
	}
	return fmt.Errorf("failed to generate response: %w", err)
}

// extractSDKText first candidate's first part, when it is text
func extractSDKText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", false
	}
	text, ok := cand.Content.Parts[0].(genai.Text)
	if !ok || text == "" {
		return "", false
	}
	return string(text), true
}
