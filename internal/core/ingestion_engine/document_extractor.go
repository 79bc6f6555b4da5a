package ingestion_engine

import (
	"context"
	"fmt"

	"code.sajari.com/docconv"

	"github.com/studymind-ai/docworker/internal/core"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv,
// which picks a parser (PDF, DOCX, PPTX, ...) from the file extension.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

// ExtractText converts the file at path and returns its text as a single
// segment. docconv flattens the document itself, so per-page segmentation
// is left to engines that provide it.
func (e *DocconvExtractor) ExtractText(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	if res.Body == "" {
		return nil, nil
	}
	return []string{res.Body}, nil
}
