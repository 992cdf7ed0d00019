package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

var ErrEmptyGuide = errors.New("knowledge guide has no text")

// Split cuts text into windows of size runes, each starting size-overlap
// runes after the previous one. Whitespace-only windows are dropped.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := min(i+size, len(runes))
		chunk := string(runes[i:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Index guide chunks with their embeddings, searched by squared L2 distance
type Index struct {
	embedder repository.Embedder
	chunks   []string
	vectors  [][]float32
	logger   *zap.Logger
}

// Build splits text and embeds every chunk up front
func Build(ctx context.Context, embedder repository.Embedder, text string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	chunks := Split(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return nil, ErrEmptyGuide
	}

	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed guide: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	logger.Info("knowledge guide indexed", zap.Int("chunks", len(chunks)))
	return &Index{embedder: embedder, chunks: chunks, vectors: vectors, logger: logger.Named("knowledge")}, nil
}

// LoadFile Build over the contents of path
func LoadFile(ctx context.Context, path string, embedder repository.Embedder, logger *zap.Logger) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guide: %w", err)
	}
	return Build(ctx, embedder, string(raw), logger)
}

// Len number of indexed chunks
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Retrieve k nearest chunks to query, closest first
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	q := vectors[0]

	type hit struct {
		idx  int
		dist float64
	}
	hits := make([]hit, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		if len(v) != len(q) {
			continue
		}
		hits = append(hits, hit{idx: i, dist: squaredL2(q, v)})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })

	k = min(k, len(hits))
	out := make([]string, 0, k)
	for _, h := range hits[:k] {
		out = append(out, ix.chunks[h.idx])
	}
	ix.logger.Debug("guide passages retrieved", zap.Int("count", len(out)))
	return out, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
