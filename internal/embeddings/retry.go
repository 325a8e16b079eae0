package embeddings

import (
	"context"
	"fmt"
	"time"
)

// RetryEmbedder wraps another Embedder and retries failed calls with
// exponential backoff. Once attempts are exhausted the last error is
// returned and the calling operation fails; nothing is retried beyond that.
type RetryEmbedder struct {
	inner    Embedder
	attempts int
	baseWait time.Duration
}

// WithRetry decorates an embedder with bounded retries. attempts below 1 is
// treated as 1; baseWait below zero as zero.
func WithRetry(inner Embedder, attempts int, baseWait time.Duration) *RetryEmbedder {
	if attempts < 1 {
		attempts = 1
	}
	if baseWait < 0 {
		baseWait = 0
	}
	return &RetryEmbedder{inner: inner, attempts: attempts, baseWait: baseWait}
}

func (e *RetryEmbedder) Name() string {
	return e.inner.Name()
}

func (e *RetryEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *RetryEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	wait := e.baseWait

	for attempt := 0; attempt < e.attempts; attempt++ {
		if attempt > 0 && wait > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrEmbedding, ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}

		vectors, err := e.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		// Cancellation is not worth retrying.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}
