package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/pdfindex/embeddings"
	"github.com/viant/pdfindex/embeddings/batch"
	"github.com/viant/pdfindex/extractor"
	"github.com/viant/pdfindex/vectordb/sqlitevec"
)

// DefaultCollection is the collection indexed when a request names none.
const DefaultCollection = "clinical_manuals"

// ErrNoPDFs is returned when the input directory holds no PDF files.
var ErrNoPDFs = errors.New("no PDFs found")

// Option configures the Service.
type Option func(*Service)

// WithEmbedder sets the embedding provider. It is wrapped with batching.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(s *Service) { s.embedder = embedder }
}

// WithModel records the embedding model name alongside stored entries.
func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithStoreDir sets the directory holding the vector store.
func WithStoreDir(dir string) Option {
	return func(s *Service) { s.storeDir = dir }
}

// WithStore sets an already opened store. The Service does not close it.
func WithStore(store *sqlitevec.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithExtractor sets the PDF extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithExtractorOptions sets options of the default extractor. It has no
// effect together with WithExtractor.
func WithExtractorOptions(opts ...extractor.Option) Option {
	return func(s *Service) { s.extractorOpts = append(s.extractorOpts, opts...) }
}

// WithBatch sets the batching options applied to the embedder.
func WithBatch(opts ...batch.Option) Option {
	return func(s *Service) { s.batchOpts = append(s.batchOpts, opts...) }
}

// WithBatchSize sets the maximum chunks per embedding request.
func WithBatchSize(size int) Option {
	return WithBatch(batch.WithSize(size))
}

// WithPause sets the delay between embedding requests.
func WithPause(d time.Duration) Option {
	return WithBatch(batch.WithPause(d))
}

// WithLogf sets a progress logger used by the service and its components.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Service) { s.logf = logf }
}

// Service exposes indexing and store inspection operations.
type Service struct {
	embedder      embeddings.Embedder
	model         string
	storeDir      string
	store         *sqlitevec.Store
	ownStore      bool
	extractor     *extractor.Extractor
	extractorOpts []extractor.Option
	batchOpts     []batch.Option
	logf          func(format string, args ...any)
	mu            sync.Mutex
}

// NewService creates a new Service.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		extractOpts := append([]extractor.Option{extractor.WithLogf(s.logf)}, s.extractorOpts...)
		s.extractor = extractor.New(extractOpts...)
	}
	return s, nil
}

// Close releases a store opened by the Service (if any).
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownStore && s.store != nil {
		err := s.store.Close()
		s.store = nil
		s.ownStore = false
		return err
	}
	return nil
}

// ensureStore opens the store on first use so that runs without any text
// never touch the disk.
func (s *Service) ensureStore() (*sqlitevec.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store, nil
	}
	if s.storeDir == "" {
		return nil, fmt.Errorf("store dir required")
	}
	store, err := sqlitevec.Open(sqlitevec.WithDir(s.storeDir))
	if err != nil {
		return nil, err
	}
	s.store = store
	s.ownStore = true
	return store, nil
}

func (s *Service) newBatcher() *batch.Embedder {
	opts := append([]batch.Option{batch.WithLogf(s.logf)}, s.batchOpts...)
	return batch.New(s.embedder, opts...)
}

func (s *Service) log(format string, args ...any) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}
