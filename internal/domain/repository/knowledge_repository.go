package repository

import "context"

// Embedder maps texts to vectors, one per text and in the same order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeRetriever passages of the reference guide closest to a question
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}
