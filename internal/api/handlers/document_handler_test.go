package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymind-ai/docworker/internal/models"
)

type fakeDBClient struct {
	docs map[string]*models.Document
}

func (f *fakeDBClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	return f.docs[id], nil
}

func (f *fakeDBClient) UpdateDocumentText(ctx context.Context, id, text string) error { return nil }

func (f *fakeDBClient) ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error {
	return nil
}

func (f *fakeDBClient) Close() error { return nil }

func getDocument(t *testing.T, h *DocumentHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/documents/{id}", h.GetDocument)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetDocument(t *testing.T) {
	db := &fakeDBClient{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", FilePath: "course/notes.pdf", ExtractedText: "hello"},
	}}
	h := NewDocumentHandler(db)

	rec := getDocument(t, h, "doc-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "course/notes.pdf", doc.FilePath)
	assert.Equal(t, "hello", doc.ExtractedText)
}

func TestGetDocumentNotFound(t *testing.T) {
	h := NewDocumentHandler(&fakeDBClient{docs: map[string]*models.Document{}})

	rec := getDocument(t, h, "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
