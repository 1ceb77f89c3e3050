// Package rag defines the failure kinds shared by the retrieval-augmented
// generation pipeline and its front ends.
package rag

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrInvalidConfiguration indicates a non-positive size or a missing
	// required setting with no safe default.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIngestFailure indicates text could not be added to the knowledge base.
	ErrIngestFailure = errors.New("ingest failed")

	// ErrRetrievalFailure indicates similarity search was unavailable.
	ErrRetrievalFailure = errors.New("retrieval failed")

	// ErrGenerationFailure indicates the language model call failed.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrTimeout indicates an external call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
)

// IngestError reports a failure while populating the knowledge base.
type IngestError struct {
	Source string
	Err    error
}

func (e *IngestError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("ingesting %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("ingesting text: %v", e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is matches ErrIngestFailure and, for deadline causes, ErrTimeout.
func (e *IngestError) Is(target error) bool {
	return target == ErrIngestFailure || (target == ErrTimeout && isDeadline(e.Err))
}

// RetrievalError reports a failed similarity search.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving passages: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is matches ErrRetrievalFailure and, for deadline causes, ErrTimeout.
func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalFailure || (target == ErrTimeout && isDeadline(e.Err))
}

// GenerationError reports a failed language model call.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating strategy: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is matches ErrGenerationFailure and, for deadline causes, ErrTimeout.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailure || (target == ErrTimeout && isDeadline(e.Err))
}

// Cause returns the underlying reason without the wrapping prefix. Front ends
// show it to end users.
func (e *GenerationError) Cause() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
