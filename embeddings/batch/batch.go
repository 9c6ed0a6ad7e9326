// Package batch provides an embeddings.Embedder that splits its input into
// provider-sized batches and paces consecutive provider requests.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/pdfindex/embeddings"
)

const (
	// DefaultSize keeps a request below the 100 input limit of the embedding API.
	DefaultSize  = 90
	DefaultPause = time.Second
)

// Option configures the Embedder.
type Option func(*Embedder)

// WithSize sets the maximum number of inputs per provider request.
func WithSize(size int) Option {
	return func(e *Embedder) {
		if size > 0 {
			e.size = size
		}
	}
}

// WithPause sets the delay between consecutive provider requests.
func WithPause(d time.Duration) Option {
	return func(e *Embedder) {
		if d >= 0 {
			e.pause = d
		}
	}
}

// WithLogf sets a progress logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(e *Embedder) { e.logf = logf }
}

// WithSleep overrides how the pause is waited out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Embedder) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// Embedder embeds documents in sequential, paced batches.
type Embedder struct {
	provider embeddings.Embedder
	size     int
	pause    time.Duration
	logf     func(format string, args ...any)
	sleep    func(ctx context.Context, d time.Duration) error
}

// New wraps provider with batching.
func New(provider embeddings.Embedder, opts ...Option) *Embedder {
	e := &Embedder{
		provider: provider,
		size:     DefaultSize,
		pause:    DefaultPause,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Size returns the configured batch size.
func (e *Embedder) Size() int { return e.size }

// Batches returns the number of provider requests needed for n inputs.
func (e *Embedder) Batches(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + e.size - 1) / e.size
}

// EmbedDocuments returns one vector per doc; result[i] is the embedding of docs[i].
// A failed batch aborts the whole call; nothing is retried.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	if len(docs) == 0 {
		return [][]float32{}, nil
	}
	if e.provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	total := e.Batches(len(docs))
	out := make([][]float32, 0, len(docs))
	for i := 0; i < len(docs); i += e.size {
		end := i + e.size
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[i:end]
		n := i/e.size + 1
		if e.logf != nil {
			e.logf("embedding batch %d/%d (%d chunks)", n, total, len(chunk))
		}
		vecs, err := e.provider.EmbedDocuments(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", n, err)
		}
		if len(vecs) != len(chunk) {
			return nil, fmt.Errorf("batch %d: embedder returned %d vectors for %d docs", n, len(vecs), len(chunk))
		}
		out = append(out, vecs...)
		if end < len(docs) && e.pause > 0 {
			if err := e.sleep(ctx, e.pause); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
