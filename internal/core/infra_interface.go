package core

import (
	"context"
	"errors"

	"github.com/studymind-ai/docworker/internal/models"
)

// ErrObjectNotFound reports that the requested key does not exist in the
// bucket. The object-storage client translates provider errors into this
// sentinel exactly once so callers never match on message text.
var ErrObjectNotFound = errors.New("object not found")

// DbClient defines all persistence operations the pipeline needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)

	// UpdateDocumentText sets extracted_text and a server-generated
	// updated_at timestamp on the document row.
	UpdateDocumentText(ctx context.Context, id string, text string) error

	// ReplaceDocumentChunks deletes every chunk for documentID and inserts
	// the given batch in a single transaction. An empty batch only deletes.
	ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It’s abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	// GetFile downloads the object at key. Returns ErrObjectNotFound
	// (possibly wrapped) when the key does not exist.
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
