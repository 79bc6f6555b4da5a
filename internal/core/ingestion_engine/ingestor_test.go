package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymind-ai/docworker/internal/core"
	"github.com/studymind-ai/docworker/internal/models"
)

// fakeDB implements core.DbClient in memory with replace semantics.
type fakeDB struct {
	mu          sync.Mutex
	texts       map[string]string
	chunks      map[string][]models.DocumentChunk
	updateErr   error
	replaceErr  error
	updateCalls int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		texts:  make(map[string]string),
		chunks: make(map[string][]models.DocumentChunk),
	}
}

func (f *fakeDB) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.texts[id]
	if !ok {
		return nil, nil
	}
	return &models.Document{ID: id, ExtractedText: text}, nil
}

func (f *fakeDB) UpdateDocumentText(ctx context.Context, id string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.texts[id] = text
	return nil
}

func (f *fakeDB) ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	delete(f.chunks, documentID)
	if len(chunks) > 0 {
		f.chunks[documentID] = chunks
	}
	return nil
}

func (f *fakeDB) Close() error { return nil }

// fakeObjectStore implements core.ObjectClient over a map of keys.
type fakeObjectStore struct {
	files    map[string][]byte
	getErr   error
	getCalls int
}

func (f *fakeObjectStore) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrObjectNotFound, key)
	}
	return data, nil
}

// fakeEmbedder returns deterministic vectors and can fail on the nth call.
type fakeEmbedder struct {
	mu       sync.Mutex
	calls    int
	failCall int // 1-based call number to fail on; 0 = never
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failCall > 0 && f.calls >= f.failCall {
		return nil, errors.New("quota exceeded")
	}
	return []float32{float32(len(text)), 0.5, -0.5}, nil
}

// fakeExtractor ignores file content and returns canned segments. It
// records the temp path it was handed and whether the file existed then.
type fakeExtractor struct {
	segments      []string
	err           error
	seenPath      string
	existedAtCall bool
	calls         int
}

func (f *fakeExtractor) ExtractText(ctx context.Context, path string) ([]string, error) {
	f.calls++
	f.seenPath = path
	_, statErr := os.Stat(path)
	f.existedAtCall = statErr == nil
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

func newTestIngestor(db *fakeDB, obj *fakeObjectStore, emb *fakeEmbedder, ext *fakeExtractor) *DocumentIngestor {
	return NewDocumentIngestor(db, obj, emb, ext, "test-bucket", &IngestConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		EmbedWorkers: 1,
	})
}

func kindOf(t *testing.T, err error) FailureKind {
	t.Helper()
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	return pe.Kind
}

func TestProcessRejectsMissingFields(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{}}
	emb := &fakeEmbedder{}
	ext := &fakeExtractor{}
	ing := newTestIngestor(db, obj, emb, ext)

	for _, req := range []models.IngestionRequest{
		{DocumentID: "", FilePath: "a/b.pdf"},
		{DocumentID: "doc-1", FilePath: ""},
		{},
	} {
		_, err := ing.Process(context.Background(), req)
		assert.Equal(t, FailureInvalidRequest, kindOf(t, err))
	}

	// Validation failures must not touch any collaborator.
	assert.Zero(t, obj.getCalls)
	assert.Zero(t, ext.calls)
	assert.Zero(t, emb.calls)
	assert.Zero(t, db.updateCalls)
}

func TestProcessMissingObject(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{}}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, &fakeExtractor{})

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "missing.pdf"})
	assert.Equal(t, FailureNotFound, kindOf(t, err))
	assert.Empty(t, db.texts)
	assert.Empty(t, db.chunks)
}

func TestProcessStorageErrorOnDownload(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{getErr: errors.New("connection reset")}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, &fakeExtractor{})

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	assert.Equal(t, FailureStorage, kindOf(t, err))
}

func TestProcessSuccess(t *testing.T) {
	text := strings.Repeat("x", 2500)
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"course/notes.pdf": []byte("%PDF-1.4")}}
	emb := &fakeEmbedder{}
	ext := &fakeExtractor{segments: []string{text}}
	ing := newTestIngestor(db, obj, emb, ext)

	res, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "course/notes.pdf"})
	require.NoError(t, err)

	// 2500 runes at 1000/200 → 4 chunks.
	assert.Equal(t, 4, res.ChunksCreated)
	assert.Equal(t, text, db.texts["doc-1"])

	rows := db.chunks["doc-1"]
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, "doc-1", row.DocumentID)
		assert.NotEmpty(t, row.ID)
		assert.NotEmpty(t, row.Embedding)
		assert.Equal(t, map[string]string{"source": "course/notes.pdf"}, row.Metadata)
	}
	assert.Equal(t, 4, emb.calls)
}

func TestProcessJoinsSegmentsWithBlankLine(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pptx": []byte("data")}}
	ext := &fakeExtractor{segments: []string{"page one", "page two", "page three"}}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, ext)

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pptx"})
	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two\n\npage three", db.texts["doc-1"])
}

func TestProcessEmptyExtractionSucceedsWithZeroChunks(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"empty.pdf": []byte("data")}}
	emb := &fakeEmbedder{}
	ing := newTestIngestor(db, obj, emb, &fakeExtractor{segments: nil})

	res, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "empty.pdf"})
	require.NoError(t, err)
	assert.Zero(t, res.ChunksCreated)
	assert.Zero(t, emb.calls)
	assert.Empty(t, db.chunks["doc-1"])
}

func TestProcessExtractionFailure(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"corrupt.pdf": []byte("not a pdf")}}
	ext := &fakeExtractor{err: errors.New("unsupported format")}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, ext)

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "corrupt.pdf"})
	assert.Equal(t, FailureExtraction, kindOf(t, err))
	assert.Empty(t, db.texts)
}

func TestProcessEmbeddingFailureLeavesChunksUntouched(t *testing.T) {
	// 3300 runes at 1000/200 → 5 chunks; the 3rd embedding call fails.
	text := strings.Repeat("y", 3300)
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	emb := &fakeEmbedder{failCall: 3}
	ing := newTestIngestor(db, obj, emb, &fakeExtractor{segments: []string{text}})

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	assert.Equal(t, FailureEmbedding, kindOf(t, err))

	// All-or-nothing: no chunk rows for the document.
	assert.Empty(t, db.chunks["doc-1"])
}

func TestProcessTextUpdateFailure(t *testing.T) {
	db := newFakeDB()
	db.updateErr = errors.New("deadlock detected")
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	emb := &fakeEmbedder{}
	ing := newTestIngestor(db, obj, emb, &fakeExtractor{segments: []string{"text"}})

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	assert.Equal(t, FailureStorage, kindOf(t, err))
	assert.Zero(t, emb.calls)
}

func TestProcessReplaceFailure(t *testing.T) {
	db := newFakeDB()
	db.replaceErr = errors.New("disk full")
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, &fakeExtractor{segments: []string{"text"}})

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	assert.Equal(t, FailureStorage, kindOf(t, err))
}

func TestProcessReingestReplacesChunks(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	ext := &fakeExtractor{segments: []string{strings.Repeat("a", 2500)}}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, ext)

	res, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.ChunksCreated)

	// Second run sees a shorter document; only its chunks remain.
	ext.segments = []string{strings.Repeat("b", 900)}
	res, err = ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksCreated)
	assert.Len(t, db.chunks["doc-1"], 1)
}

func TestProcessCleansUpTempFile(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	ext := &fakeExtractor{segments: []string{"text"}}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, ext)

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	require.NoError(t, err)

	assert.True(t, ext.existedAtCall, "temp file should exist while extracting")
	assert.True(t, strings.HasSuffix(ext.seenPath, ".pdf"), "temp file keeps the source extension, got %q", ext.seenPath)
	_, statErr := os.Stat(ext.seenPath)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after processing")
}

func TestProcessCleansUpTempFileOnExtractionError(t *testing.T) {
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	ext := &fakeExtractor{err: errors.New("boom")}
	ing := newTestIngestor(db, obj, &fakeEmbedder{}, ext)

	_, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	require.Error(t, err)

	_, statErr := os.Stat(ext.seenPath)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed on failure too")
}

func TestProcessParallelEmbeddingKeepsChunkOrder(t *testing.T) {
	text := strings.Repeat("z", 5000) // 6 chunks at 1000/200
	db := newFakeDB()
	obj := &fakeObjectStore{files: map[string][]byte{"a.pdf": []byte("data")}}
	ing := NewDocumentIngestor(db, obj, &fakeEmbedder{}, &fakeExtractor{segments: []string{text}}, "test-bucket", &IngestConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		EmbedWorkers: 4,
	})

	res, err := ing.Process(context.Background(), models.IngestionRequest{DocumentID: "doc-1", FilePath: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 7, res.ChunksCreated)

	rows := db.chunks["doc-1"]
	require.Len(t, rows, 7)
	chunks, err := ChunkText(text, 1000, 200)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, chunks[i].Text, row.Content, "row %d out of order", i)
	}
}
