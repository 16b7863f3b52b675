package internalerr

import "errors"

// Sentinel errors shared by every stage. Callers wrap them with context
// (fmt.Errorf("...: %w", ErrX)) so errors.Is keeps working across layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Stage one
	ErrMalformedDocument = errors.New("malformed document")
	ErrWriteFailure      = errors.New("write failure")

	// Stage two
	ErrInsufficientData   = errors.New("insufficient data")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrUninitializedModel = errors.New("uninitialized model")
)
