package models

import (
	"time"
)

// IngestionRequest identifies one uploaded document to process.
// Built from the inbound webhook payload; both fields are required.
type IngestionRequest struct {
	DocumentID string `json:"document_id"`
	FilePath   string `json:"file_path"`
}

// Document is the persisted record for an uploaded file. The upload
// front-end owns the row; this worker only writes ExtractedText and
// UpdatedAt after a successful extraction.
type Document struct {
	ID            string    `db:"id" json:"id"`
	FilePath      string    `db:"file_path" json:"file_path"`
	ExtractedText string    `db:"extracted_text" json:"extracted_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one embedded slice of a document's extracted text.
type DocumentChunk struct {
	ID         string            `db:"id" json:"id"`
	DocumentID string            `db:"document_id" json:"document_id"`
	Content    string            `db:"content" json:"content"`
	Embedding  []float32         `db:"embedding" json:"embedding"` // pgvector column
	Metadata   map[string]string `db:"metadata" json:"metadata"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}
