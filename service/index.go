package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/pdfindex/vectordb/sqlitevec"
)

// Index extracts page chunks from the PDFs in req.PDFDir, embeds them in
// batches and upserts them into the named collection.
func (s *Service) Index(ctx context.Context, req IndexRequest) (*IndexResult, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	name := strings.TrimSpace(req.Collection)
	if name == "" {
		name = DefaultCollection
	}

	files, err := s.extractor.List(ctx, req.PDFDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFs, req.PDFDir)
	}
	s.log("found %d PDF files in %s", len(files), req.PDFDir)

	extracted, err := s.extractor.Extract(ctx, files)
	if err != nil {
		return nil, err
	}
	result := &IndexResult{
		Files:      len(files),
		Failed:     len(extracted.Failures),
		Chunks:     len(extracted.Chunks),
		Collection: name,
	}
	s.log("extracted %d chunks from %d files (%d failed)", result.Chunks, result.Files, result.Failed)
	if result.Chunks == 0 {
		result.NoText = true
		return result, nil
	}

	store, err := s.ensureStore()
	if err != nil {
		return nil, err
	}
	batcher := s.newBatcher()
	s.log("embedding %d chunks in %d batches of up to %d", result.Chunks, batcher.Batches(result.Chunks), batcher.Size())
	collection, err := store.GetOrCreateCollection(ctx, name, batcher, s.model)
	if err != nil {
		return nil, err
	}
	result.Collection = collection.Name()
	records := make([]sqlitevec.Record, len(extracted.Chunks))
	for i, chunk := range extracted.Chunks {
		records[i] = sqlitevec.Record{ID: chunk.ID, Text: chunk.Text, Meta: chunk.Meta()}
	}
	if err := collection.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if result.Total, err = collection.Count(ctx); err != nil {
		return nil, err
	}
	s.log("stored %d chunks in collection %s (%d total)", result.Chunks, result.Collection, result.Total)
	return result, nil
}
