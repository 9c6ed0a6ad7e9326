package sqlitevec

import (
	"context"
	"fmt"

	"github.com/viant/pdfindex/embeddings"
	"github.com/viant/sqlite-vec/vector"
)

// Collection is a named set of entries bound to an embedder.
type Collection struct {
	store    *Store
	name     string
	embedder embeddings.Embedder
	model    string
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Upsert embeds all record texts with a single embedder call and writes
// every record in one transaction. Existing ids are overwritten.
func (c *Collection) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	texts := make([]string, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %d: id is required", i)
		}
		texts[i] = r.Text
	}
	vecs, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %s: %w", c.name, err)
	}
	if len(vecs) != len(records) {
		return fmt.Errorf("embedder returned %d vectors for %d docs", len(vecs), len(records))
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(dataset_id, id, content, meta, embedding, embedding_model, updated_at)
VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(dataset_id, id) DO UPDATE SET
	content=excluded.content,
	meta=excluded.meta,
	embedding=excluded.embedding,
	embedding_model=excluded.embedding_model,
	updated_at=excluded.updated_at`, shadowTable))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		metaJSON, err := encodeMeta(r.Meta)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		blob, err := vector.EncodeEmbedding(vecs[i])
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.name, r.ID, r.Text, metaJSON, blob, c.model); err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE vec_collection SET updated_at = CURRENT_TIMESTAMP WHERE name = ?`, c.name); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of entries in the collection.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	var n int64
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE dataset_id = ?`, shadowTable), c.name).Scan(&n)
	return n, err
}
