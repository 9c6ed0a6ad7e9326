// Package simple provides a deterministic, offline embedder.
package simple

import "context"

// DefaultDim is the vector size used when none is given.
const DefaultDim = 64

// Embedder derives vectors from a string hash; equal texts embed equally.
type Embedder struct {
	Dim int
}

// New constructs a simple embedder with dim dimensions.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Embedder{Dim: dim}
}

// EmbedDocuments embeds documents deterministically.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, s := range docs {
		out[i] = embedString(s, e.Dim)
	}
	return out, nil
}

func embedString(s string, dim int) []float32 {
	if dim <= 0 {
		dim = DefaultDim
	}
	v := make([]float32, dim)
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h = (h ^ uint32(s[i])) * 16777619
	}
	seed := h
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%10000) / 10000.0
	}
	return v
}
