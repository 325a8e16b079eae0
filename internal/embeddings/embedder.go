// Package embeddings maps text to fixed-dimension vectors through an
// external model. Providers are interchangeable behind the Embedder
// interface; failures surface as ErrEmbedding so callers can retry.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmbedding marks a model or runtime failure while embedding. Callers
// may retry with bounded backoff (see WithRetry); exhausting retries is
// fatal to that one embed call, not to the process.
var ErrEmbedding = errors.New("embedding failure")

// Embedder turns texts into vectors. For a fixed model version the mapping
// is a pure function of the text. Implementations must tolerate concurrent
// callers.
type Embedder interface {
	// Embed generates one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector length the model produces.
	Dimensions() int

	// Name identifies the embedding model.
	Name() string
}
