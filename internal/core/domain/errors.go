package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Query Errors.

	// ErrInvalidQuery indicates a query request was rejected, e.g. a non-numeric year.
	// It never affects index state.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIndexUnavailable indicates no build has ever completed successfully.
	// It is a not-ready condition, distinct from a validation error.
	ErrIndexUnavailable = errors.New("index unavailable")

	// Build Errors.

	// ErrMissingDataset indicates a required dataset file is absent or unreadable.
	// The build fails and the previously committed index stays servable.
	ErrMissingDataset = errors.New("missing required dataset")

	// ErrSchemaViolation indicates a composed document cannot be represented
	// under the index schema. The build fails.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrBuildCancelled indicates the build was cancelled before commit.
	ErrBuildCancelled = errors.New("build cancelled")
)
