package embeddings

import "context"

// Embedder computes vector embeddings for documents. Implementations must
// return exactly one vector per input, in input order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
}

// Func adapts an ordinary function to the Embedder interface.
type Func func(ctx context.Context, docs []string) ([][]float32, error)

// EmbedDocuments calls f(ctx, docs).
func (f Func) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return f(ctx, docs)
}
