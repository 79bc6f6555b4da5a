package core

import "context"

// DocumentExtractor defines the interface for extracting text from various
// document types. The engine may produce more than one logical segment
// (per page or per section); callers join them into a single text.
type DocumentExtractor interface {
	// ExtractText parses the file at path, choosing a strategy from the
	// file extension, and returns the extracted segments in order.
	ExtractText(ctx context.Context, path string) ([]string, error)
}
