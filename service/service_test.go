package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/pdfindex/embeddings"
	"github.com/viant/pdfindex/embeddings/simple"
	"github.com/viant/pdfindex/extractor"
	"github.com/viant/pdfindex/vectordb/sqlitevec"
)

// textPages treats file content as pages separated by "|"; "ERR" fails.
type textPages struct {
	calls int
}

func (p *textPages) Pages(data []byte) ([]string, error) {
	p.calls++
	if string(data) == "ERR" {
		return nil, errors.New("corrupt xref table")
	}
	return strings.Split(string(data), "|"), nil
}

type countingEmbedder struct {
	calls int
	docs  int
	err   error
}

func (e *countingEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	e.calls++
	e.docs += len(docs)
	if e.err != nil {
		return nil, e.err
	}
	return simple.New(8).EmbedDocuments(ctx, docs)
}

func writePDFs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestService(t *testing.T, emb embeddings.Embedder, pages *textPages, storeDir string) *Service {
	t.Helper()
	svc, err := NewService(
		WithEmbedder(emb),
		WithStoreDir(storeDir),
		WithExtractor(extractor.New(extractor.WithPageReader(pages))),
		WithPause(0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_Index(t *testing.T) {
	ctx := context.Background()
	pdfDir := writePDFs(t, map[string]string{
		"intake.pdf":    "Patient Intake Form|",
		"discharge.pdf": "Discharge instructions for\ncardiac patients|short",
		"broken.pdf":    "ERR",
		"readme.txt":    "Not a manual at all",
	})
	storeDir := filepath.Join(t.TempDir(), "chroma_db")
	emb := &countingEmbedder{}
	svc := newTestService(t, emb, &textPages{}, storeDir)

	result, err := svc.Index(ctx, IndexRequest{PDFDir: pdfDir})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, DefaultCollection, result.Collection)
	assert.EqualValues(t, 2, result.Total)
	assert.False(t, result.NoText)
	assert.Equal(t, 1, emb.calls)

	// a re-run overwrites the same ids instead of appending
	result, err = svc.Index(ctx, IndexRequest{PDFDir: pdfDir})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)

	stats, err := svc.Stats(ctx, StatsRequest{Collection: DefaultCollection})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 2, stats[0].Documents)

	var content, meta string
	row := svc.store.DB().QueryRowContext(ctx, `SELECT content, meta FROM _vec_emb_docs WHERE dataset_id = ? AND id = ?`, DefaultCollection, "chunk_1")
	require.NoError(t, row.Scan(&content, &meta))
	assert.Equal(t, "Discharge instructions for cardiac patients", content)
	assert.JSONEq(t, `{"source":"discharge.pdf","page":1}`, meta)
}

func TestService_IndexNoPDFs(t *testing.T) {
	pages := &textPages{}
	emb := &countingEmbedder{}
	storeDir := filepath.Join(t.TempDir(), "chroma_db")
	svc := newTestService(t, emb, pages, storeDir)

	_, err := svc.Index(context.Background(), IndexRequest{PDFDir: writePDFs(t, map[string]string{"notes.txt": "x"})})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPDFs))
	assert.Equal(t, 0, pages.calls)
	assert.Equal(t, 0, emb.calls)
	_, statErr := os.Stat(storeDir)
	assert.True(t, os.IsNotExist(statErr), "store must not be created")
}

func TestService_IndexNoText(t *testing.T) {
	emb := &countingEmbedder{}
	storeDir := filepath.Join(t.TempDir(), "chroma_db")
	svc := newTestService(t, emb, &textPages{}, storeDir)

	result, err := svc.Index(context.Background(), IndexRequest{PDFDir: writePDFs(t, map[string]string{"scan.pdf": "|  |tiny"})})
	require.NoError(t, err)
	assert.True(t, result.NoText)
	assert.Equal(t, 0, result.Chunks)
	assert.Equal(t, 0, emb.calls)
	_, statErr := os.Stat(storeDir)
	assert.True(t, os.IsNotExist(statErr), "store must not be created")
}

func TestService_IndexEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	emb := &countingEmbedder{err: errors.New("quota exceeded")}
	svc := newTestService(t, emb, &textPages{}, filepath.Join(t.TempDir(), "chroma_db"))

	_, err := svc.Index(ctx, IndexRequest{PDFDir: writePDFs(t, map[string]string{"intake.pdf": "Patient Intake Form"}), Collection: "cardiology"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	stats, err := svc.Stats(ctx, StatsRequest{Collection: "cardiology"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 0, stats[0].Documents)
}

func TestService_IndexBatches(t *testing.T) {
	var pages []string
	for i := 0; i < 91; i++ {
		pages = append(pages, "Clinical protocol page "+strings.Repeat("x", i))
	}
	emb := &countingEmbedder{}
	svc := newTestService(t, emb, &textPages{}, filepath.Join(t.TempDir(), "chroma_db"))

	result, err := svc.Index(context.Background(), IndexRequest{PDFDir: writePDFs(t, map[string]string{"manual.pdf": strings.Join(pages, "|")})})
	require.NoError(t, err)
	assert.Equal(t, 91, result.Chunks)
	assert.EqualValues(t, 91, result.Total)
	assert.Equal(t, 2, emb.calls)
	assert.Equal(t, 91, emb.docs)
}

func TestService_IndexRequiresEmbedder(t *testing.T) {
	svc, err := NewService(WithStoreDir(t.TempDir()))
	require.NoError(t, err)
	_, err = svc.Index(context.Background(), IndexRequest{PDFDir: t.TempDir()})
	require.Error(t, err)
}

func TestService_StatsUnknownCollection(t *testing.T) {
	svc := newTestService(t, &countingEmbedder{}, &textPages{}, t.TempDir())
	_, err := svc.Stats(context.Background(), StatsRequest{Collection: "missing"})
	require.Error(t, err)
}

func TestService_IndexSharedStoreAndExtractorOptions(t *testing.T) {
	ctx := context.Background()
	store, err := sqlitevec.Open(sqlitevec.WithDSN(":memory:"))
	require.NoError(t, err)
	defer store.Close()

	pages := &textPages{}
	svc, err := NewService(
		WithEmbedder(&countingEmbedder{}),
		WithStore(store),
		WithPause(0),
		WithExtractorOptions(extractor.WithPageReader(pages), extractor.WithPattern("*.PDF"), extractor.WithMinLength(20)),
	)
	require.NoError(t, err)

	pdfDir := writePDFs(t, map[string]string{
		"SCAN.PDF":   "Scanned consent form page|Too short here",
		"intake.pdf": "Patient Intake Form with history",
	})
	result, err := svc.Index(ctx, IndexRequest{PDFDir: pdfDir, Collection: " consent "})
	require.NoError(t, err)
	assert.Equal(t, 1, pages.calls)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, "consent", result.Collection)

	// the caller keeps ownership of the store
	require.NoError(t, svc.Close())
	infos, err := store.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.EqualValues(t, 1, infos[0].Documents)
}
