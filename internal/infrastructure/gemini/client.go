package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash-latest"

	DefaultEmbeddingModel = "text-embedding-004"

	maxResponseBytes = 4 << 20
	apiKeyHeader     = "x-goog-api-key"
)

// Config settings shared by the REST and SDK backends
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
	MaxConcurrent  int
	MinInterval    time.Duration
}

// DefaultConfig sensible defaults for the given key
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		BaseURL:        DefaultBaseURL,
		Model:          DefaultModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        20 * time.Second,
		MaxConcurrent:  3,
		MinInterval:    350 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.APIKey)
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if strings.TrimSpace(c.Model) == "" {
		c.Model = d.Model
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		c.EmbeddingModel = d.EmbeddingModel
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.MinInterval < 0 {
		c.MinInterval = 0
	}
	return c
}

var (
	_ repository.AIRepository = (*Client)(nil)
	_ repository.AIRepository = (*SDKClient)(nil)
)

// Client talks to the generateContent REST endpoint directly
type Client struct {
	cfg        Config
	httpClient *http.Client
	throttle   *throttle
	logger     *zap.Logger
}

// NewClient REST backend
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		throttle:   newThrottle(cfg.MaxConcurrent, cfg.MinInterval),
		logger:     logger.Named("gemini"),
	}
}

// GenerateAnswer sends {contents:[{parts:[{text:prompt}]}]} and returns the
// first candidate's first part text.
func (c *Client) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", repository.ErrMissingAPIKey
	}

	release, err := c.throttle.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("waiting for request slot: %w", err)
	}
	defer release()

	payload, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("generateContent finished",
		zap.String("model", c.cfg.Model),
		zap.Int("status", resp.StatusCode),
		zap.Int("prompt_len", len(prompt)),
		zap.Duration("elapsed", time.Since(start)))

	var parsed generateResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &repository.APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		if decodeErr == nil && parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
			if parsed.Error.Status != "" {
				apiErr.Status = parsed.Error.Status
			}
		}
		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrNoAnswer, decodeErr)
	}
	if parsed.Error != nil {
		return "", &repository.APIError{StatusCode: resp.StatusCode, Status: parsed.Error.Status, Message: parsed.Error.Message}
	}

	text, ok := parsed.firstText()
	if !ok {
		return "", repository.ErrNoAnswer
	}
	return text, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
}

// stripURL drops the request URL from transport errors so logged errors
// never carry endpoint details.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
