package core

import "context"

// EmbeddingProvider converts one chunk of text into one vector.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
