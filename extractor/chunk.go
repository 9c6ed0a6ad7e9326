package extractor

import "fmt"

// Chunk is one normalized page of text with a run-scoped identifier.
type Chunk struct {
	ID     string
	Text   string
	Source string
	Page   int
}

// Meta returns the metadata persisted alongside the chunk.
func (c Chunk) Meta() map[string]interface{} {
	return map[string]interface{}{
		"source": c.Source,
		"page":   c.Page,
	}
}

// FileError records a file that could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("could not read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result holds chunks in extraction order and the files that were skipped.
type Result struct {
	Files    int
	Chunks   []Chunk
	Failures []*FileError
}

// Texts returns chunk texts, aligned with IDs.
func (r *Result) Texts() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Text
	}
	return out
}

// IDs returns chunk ids, aligned with Texts.
func (r *Result) IDs() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.ID
	}
	return out
}

// chunkID formats the n-th chunk id of a run.
func chunkID(n int) string {
	return fmt.Sprintf("chunk_%d", n)
}
