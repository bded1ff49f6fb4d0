package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested page, tag or variation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDocument indicates no document contents have been loaded yet.
	ErrNoDocument = errors.New("no document loaded")

	// Pipeline Errors.

	// ErrFetchFailure indicates a template or conversion network error.
	// It is transient: the caller may retry.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrRenderFailure indicates a template could not be bound to its data,
	// e.g. missing or malformed placeholder data.
	ErrRenderFailure = errors.New("render failure")

	// ErrServiceFailure indicates the extraction/retrieval backend failed.
	// It is transient: the caller may retry.
	ErrServiceFailure = errors.New("service failure")

	// ErrRateLimited indicates an external API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Generation Errors.

	// ErrGenerationSuperseded indicates a newer generation cycle replaced this one.
	ErrGenerationSuperseded = errors.New("generation superseded")

	// ErrTooManyCombinations indicates a document exceeds the configured combination cap.
	ErrTooManyCombinations = errors.New("too many combinations")

	// ErrInvalidTransition indicates a retrieval progress event arrived out of order.
	ErrInvalidTransition = errors.New("invalid transition")
)

// IsTransient reports whether err is a failure the user may retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrFetchFailure) ||
		errors.Is(err, ErrServiceFailure) ||
		errors.Is(err, ErrRateLimited)
}

// CombinationError records which page combination failed to render.
type CombinationError struct {
	PageNumber  int
	Key         string
	Combination Combination
	Err         error
}

// Error implements the error interface.
func (e *CombinationError) Error() string {
	return fmt.Sprintf("page %d combination %s: %v", e.PageNumber, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CombinationError) Unwrap() error {
	return e.Err
}
