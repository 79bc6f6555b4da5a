package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studymind-ai/docworker/internal/core"
)

// DocumentHandler exposes read access to processed documents, mainly for
// checking what a pipeline run actually stored.
type DocumentHandler struct {
	dbclient core.DbClient
}

func NewDocumentHandler(dbclient core.DbClient) *DocumentHandler {
	return &DocumentHandler{dbclient: dbclient}
}

// GetDocument handles GET /documents/{id}.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id required")
		return
	}

	doc, err := h.dbclient.GetDocumentByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
