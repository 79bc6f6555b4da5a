package ingestion_engine

import "fmt"

// FailureKind classifies a terminal pipeline failure. The webhook layer
// maps kinds to HTTP statuses; the pipeline itself never retries.
type FailureKind string

const (
	FailureInvalidRequest FailureKind = "invalid_request"
	FailureNotFound       FailureKind = "not_found"
	FailureStorage        FailureKind = "storage_failure"
	FailureExtraction     FailureKind = "extraction_failure"
	FailureEmbedding      FailureKind = "embedding_failure"
	FailureInternal       FailureKind = "internal_error"
)

// PipelineError is the terminal failure of one ingestion run, classified
// at the point of the external call that produced it.
type PipelineError struct {
	Kind FailureKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func failf(kind FailureKind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
