// Package extractor turns a directory of PDF files into page-level text chunks.
package extractor

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// DefaultPattern selects PDF files in the listed directory.
const DefaultPattern = "*.pdf"

// Option configures the Extractor.
type Option func(*Extractor)

// WithFS sets the file system used to list and read files.
func WithFS(fs afs.Service) Option {
	return func(e *Extractor) { e.fs = fs }
}

// WithPageReader replaces the PDF page reader.
func WithPageReader(reader PageReader) Option {
	return func(e *Extractor) { e.pages = reader }
}

// WithPattern sets the base-name pattern (filepath.Match syntax) of listed files.
func WithPattern(pattern string) Option {
	return func(e *Extractor) {
		if pattern != "" {
			e.pattern = pattern
		}
	}
}

// WithMinLength sets the minimum normalized text length, in runes.
func WithMinLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLength = n
		}
	}
}

// WithLogf sets a progress logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(e *Extractor) { e.logf = logf }
}

// Extractor lists PDF files and extracts chunks from them.
type Extractor struct {
	fs        afs.Service
	pages     PageReader
	pattern   string
	minLength int
	logf      func(format string, args ...any)
}

// New creates an Extractor backed by the local file system and ReadPages.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		fs:        afs.New(),
		pages:     PageReaderFunc(ReadPages),
		pattern:   DefaultPattern,
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// List returns URLs of files directly under dir whose name matches the
// pattern, sorted by name. A missing directory yields no files.
func (e *Extractor) List(ctx context.Context, dir string) ([]string, error) {
	location, err := normalizeLocation(dir)
	if err != nil {
		return nil, err
	}
	exists, err := e.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", dir, err)
	}
	if !exists {
		return nil, nil
	}
	objects, err := e.fs.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		ok, err := filepath.Match(e.pattern, object.Name())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", e.pattern, err)
		}
		if ok {
			files = append(files, object.URL())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Extract reads files in order and returns their chunks. Ids come from a
// single counter shared by all files, starting at 1. A file that cannot be
// read is logged, recorded in Result.Failures and skipped; chunks of pages
// read before the failure are kept.
func (e *Extractor) Extract(ctx context.Context, files []string) (*Result, error) {
	result := &Result{Files: len(files)}
	next := 1
	for _, URL := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := path.Base(url.Path(URL))
		e.log("processing: %s", name)
		pages, err := e.readPages(ctx, URL)
		for i, raw := range pages {
			if raw == "" {
				continue
			}
			text := Normalize(raw)
			if !longEnough(text, e.minLength) {
				continue
			}
			result.Chunks = append(result.Chunks, Chunk{ID: chunkID(next), Text: text, Source: name, Page: i + 1})
			next++
		}
		if err != nil {
			fileErr := &FileError{Path: name, Err: err}
			e.log("could not read %s, error: %v", name, err)
			result.Failures = append(result.Failures, fileErr)
		}
	}
	return result, nil
}

func (e *Extractor) readPages(ctx context.Context, URL string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	data, err := e.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	return e.pages.Pages(data)
}

func (e *Extractor) log(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

// normalizeLocation turns relative and absolute OS paths into file URLs.
func normalizeLocation(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		abs, err := filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
		norm = abs
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}
