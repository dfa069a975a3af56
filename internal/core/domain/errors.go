package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNoDocuments indicates a directory walk extracted zero documents.
	// Fatal to that ingestion call; an already-persisted index is untouched.
	ErrNoDocuments = errors.New("no documents found")

	// ErrEmptyInput indicates an index build received zero chunks.
	ErrEmptyInput = errors.New("empty input")

	// ErrIndexAbsent indicates no vector index has ever been persisted.
	// This is a distinct, detectable state, not a transient failure.
	ErrIndexAbsent = errors.New("vector index absent")

	// ErrNotLoaded indicates a query was attempted before Load succeeded.
	ErrNotLoaded = errors.New("pipeline not loaded")

	// ErrGeneration indicates a text-generation call failed or returned
	// content that does not fit the expected structured shape.
	ErrGeneration = errors.New("generation failed")

	// ErrRender indicates the export collaborator could not produce a file.
	ErrRender = errors.New("render failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown extractor or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates an ingestion is already running for
	// the same persisted index location.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// StageError marks a run failure with the pipeline stage that caused it.
// Generation and render failures always bubble to the run's top level
// wrapped in a StageError; retrieval failures never do.
type StageError struct {
	// Stage is the pipeline stage that failed.
	Stage Stage

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it occurred in.
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
