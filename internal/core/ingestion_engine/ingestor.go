package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/studymind-ai/docworker/internal/core"
	"github.com/studymind-ai/docworker/internal/models"
)

// IngestConfig tunes the pipeline.
//
// ChunkSize:    runes per chunk window (e.g., 1000).
// ChunkOverlap: runes shared between consecutive windows (e.g., 200).
// EmbedWorkers: concurrent embedding calls; 1 means strictly sequential.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedWorkers int
}

// IngestResult reports a successful pipeline run.
type IngestResult struct {
	ChunksCreated int
}

// Ingestor drives the full pipeline for one document.
type Ingestor interface {
	Process(ctx context.Context, req models.IngestionRequest) (*IngestResult, error)
}

// DocumentIngestor orchestrates download → extract → chunk → embed →
// persist for one webhook notification at a time. Failures are classified
// into a PipelineError at the call that produced them; no step retries.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	embedder  core.EmbeddingProvider
	extractor core.DocumentExtractor
	bucket    string
	cfg       *IngestConfig
}

func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, ext core.DocumentExtractor, bucket string, cfg *IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, embedder: emb, extractor: ext,
		bucket: bucket, cfg: cfg,
	}
}

var _ Ingestor = (*DocumentIngestor)(nil)

// Process runs the pipeline end to end. On success the store holds the
// extracted text and exactly the chunks of this run; on any failure the
// chunk table is left untouched by this invocation.
func (i *DocumentIngestor) Process(ctx context.Context, req models.IngestionRequest) (*IngestResult, error) {
	if req.DocumentID == "" || req.FilePath == "" {
		return nil, failf(FailureInvalidRequest, "document_id and file_path are required")
	}

	log.Printf("ingest %s: downloading %s", req.DocumentID, req.FilePath)
	data, err := i.obj.GetFile(ctx, i.bucket, req.FilePath)
	if err != nil {
		if errors.Is(err, core.ErrObjectNotFound) {
			return nil, failf(FailureNotFound, "file not found: %s", req.FilePath)
		}
		return nil, &PipelineError{Kind: FailureStorage, Err: fmt.Errorf("download %s: %w", req.FilePath, err)}
	}

	markdown, err := i.extractMarkdown(ctx, data, filepath.Ext(req.FilePath))
	if err != nil {
		return nil, &PipelineError{Kind: FailureExtraction, Err: err}
	}

	if err := i.db.UpdateDocumentText(ctx, req.DocumentID, markdown); err != nil {
		return nil, &PipelineError{Kind: FailureStorage, Err: fmt.Errorf("update document text: %w", err)}
	}

	chunks, err := ChunkText(markdown, i.cfg.ChunkSize, i.cfg.ChunkOverlap)
	if err != nil {
		// Misconfiguration, not a property of the request.
		return nil, &PipelineError{Kind: FailureInternal, Err: err}
	}

	vectors, err := i.embedAll(ctx, chunks)
	if err != nil {
		return nil, &PipelineError{Kind: FailureEmbedding, Err: err}
	}

	rows := make([]models.DocumentChunk, len(chunks))
	for idx := range chunks {
		rows[idx] = models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: req.DocumentID,
			Content:    chunks[idx].Text,
			Embedding:  vectors[idx],
			Metadata:   map[string]string{"source": req.FilePath},
		}
	}

	if err := i.db.ReplaceDocumentChunks(ctx, req.DocumentID, rows); err != nil {
		return nil, &PipelineError{Kind: FailureStorage, Err: fmt.Errorf("replace chunks: %w", err)}
	}

	log.Printf("ingest %s: stored %d chunks", req.DocumentID, len(rows))
	return &IngestResult{ChunksCreated: len(rows)}, nil
}

// extractMarkdown materializes the downloaded bytes to a scoped temp file,
// runs the extraction engine on it, and joins the returned segments with a
// blank line. The temp file is removed on every exit path.
func (i *DocumentIngestor) extractMarkdown(ctx context.Context, data []byte, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "ingest-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	segments, err := i.extractor.ExtractText(ctx, tmp.Name())
	if err != nil {
		return "", err
	}
	return strings.Join(segments, "\n\n"), nil
}

// embedAll embeds every chunk, at most cfg.EmbedWorkers at a time, and
// returns the vectors in chunk order. All results are aggregated before
// the caller writes anything, so a single failure means nothing persists.
func (i *DocumentIngestor) embedAll(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	workers := i.cfg.EmbedWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for idx, ch := range chunks {
		g.Go(func() error {
			vec, err := i.embedder.EmbedText(gctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d (offset %d): %w", idx, ch.Offset, err)
			}
			vectors[idx] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
