package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/studymind-ai/docworker/internal/core/ingestion_engine"
	"github.com/studymind-ai/docworker/internal/models"
)

// WebhookHandler receives storage-upload notifications and runs the
// ingestion pipeline synchronously. The trigger is a server-to-server
// call; no session or cookie context is expected.
type WebhookHandler struct {
	ingestor ingestion_engine.Ingestor
}

func NewWebhookHandler(ing ingestion_engine.Ingestor) *WebhookHandler {
	return &WebhookHandler{ingestor: ing}
}

type webhookPayload struct {
	Record struct {
		ID       string `json:"id"`
		FilePath string `json:"file_path"`
	} `json:"record"`
}

type processResponse struct {
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
}

// ProcessDocument handles POST /process.
func (h *WebhookHandler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := models.IngestionRequest{
		DocumentID: payload.Record.ID,
		FilePath:   payload.Record.FilePath,
	}

	result, err := h.ingestor.Process(r.Context(), req)
	if err != nil {
		log.Printf("ingest %s failed: %v", req.DocumentID, err)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, processResponse{Status: "success", ChunksCreated: result.ChunksCreated})
}

// statusForError maps the pipeline failure taxonomy onto HTTP statuses.
func statusForError(err error) int {
	var pe *ingestion_engine.PipelineError
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	switch pe.Kind {
	case ingestion_engine.FailureInvalidRequest:
		return http.StatusBadRequest
	case ingestion_engine.FailureNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
