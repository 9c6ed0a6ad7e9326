// Package sqlitevec persists named collections of (id, text, vector) entries
// in a local SQLite database using the sqlite-vec embedding encoding.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/pdfindex/db/sqliteutil"
	"github.com/viant/pdfindex/embeddings"
	"github.com/viant/sqlite-vec/engine"
)

const (
	// DefaultFile is the database file created inside the store directory.
	DefaultFile = "index.sqlite"
	shadowTable = "_vec_emb_docs"
	busyTimeout = 5000
)

// Option configures the Store.
type Option func(*Store)

// WithDB sets an existing *sql.DB to use.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

// WithDSN sets the SQLite DSN to open (e.g. /path/to/db.sqlite).
func WithDSN(dsn string) Option {
	return func(s *Store) { s.dsn = dsn }
}

// WithDir stores the database as DefaultFile inside dir, creating dir if needed.
func WithDir(dir string) Option {
	return func(s *Store) { s.dir = dir }
}

// WithEnsureSchema controls whether tables are created automatically.
func WithEnsureSchema(enabled bool) Option {
	return func(s *Store) { s.ensureSchema = enabled }
}

// Store is an on-disk collection store.
type Store struct {
	db            *sql.DB
	dsn           string
	dir           string
	ensureSchema  bool
	openedLocally bool
}

// Record is one entry to upsert.
type Record struct {
	ID   string
	Text string
	Meta map[string]interface{}
}

// CollectionInfo summarizes a stored collection.
type CollectionInfo struct {
	Name           string
	EmbeddingModel string
	Documents      int64
	CreatedAt      string
}

// Open opens or creates the store.
func Open(opts ...Option) (*Store, error) {
	s := &Store{ensureSchema: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.db == nil {
		if s.dsn == "" && s.dir != "" {
			if err := os.MkdirAll(s.dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlitevec: create %s: %w", s.dir, err)
			}
			s.dsn = filepath.Join(s.dir, DefaultFile)
		}
		if s.dsn == "" {
			return nil, fmt.Errorf("sqlitevec: dsn required")
		}
		db, err := engine.Open(sqliteutil.EnsurePragmas(s.dsn, true, busyTimeout))
		if err != nil {
			return nil, fmt.Errorf("sqlitevec: open %s: %w", s.dsn, err)
		}
		if sqliteutil.IsMemory(s.dsn) {
			// every connection to :memory: is a separate database
			db.SetMaxOpenConns(1)
		} else {
			db.SetMaxOpenConns(4)
			db.SetMaxIdleConns(4)
		}
		s.db = db
		s.openedLocally = true
	}
	if s.ensureSchema {
		if err := s.ensureSchemaDDL(context.Background()); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying DB if Store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// GetOrCreateCollection returns the named collection, creating it when
// missing. embedder computes vectors for upserted texts.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string, embedder embeddings.Embedder, model string) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO vec_collection(name, embedding_model) VALUES(?, ?)`, name, model); err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return &Collection{store: s, name: name, embedder: embedder, model: model}, nil
}

// Collections lists stored collections with their document counts.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT c.name, COALESCE(c.embedding_model, ''), CAST(c.created_at AS TEXT),
	(SELECT COUNT(*) FROM %s d WHERE d.dataset_id = c.name)
FROM vec_collection c ORDER BY c.name`, shadowTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.EmbeddingModel, &info.CreatedAt, &info.Documents); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) ensureSchemaDDL(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vec_collection (
			name            TEXT PRIMARY KEY,
			embedding_model TEXT,
			created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			dataset_id       TEXT NOT NULL,
			id               TEXT NOT NULL,
			content          TEXT,
			meta             TEXT,
			embedding        BLOB,
			embedding_model  TEXT,
			updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (dataset_id, id)
		);`, shadowTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlitevec: schema: %w", err)
		}
	}
	return nil
}

func encodeMeta(metaIn map[string]interface{}) (string, error) {
	if metaIn == nil {
		metaIn = map[string]interface{}{}
	}
	data, err := json.Marshal(metaIn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
