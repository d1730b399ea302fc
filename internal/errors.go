package internal

import "fmt"

// ValidationError reports malformed or out-of-range input. User-correctable;
// surfaced to the boundary with field-level detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// StorageError wraps an engine-level persistence failure. Reported
// generically at the boundary; never retried automatically, since a retried
// insert could duplicate an append-only row.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProviderFailure covers network, parse and contract failures from the
// generative-text provider. Deliberately absorbed inside the insight
// pipeline: callers receive a fallback insight, never this error.
type ProviderFailure struct {
	Stage string // invoke, parse, contract
	Err   error
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Stage, e.Err)
}

func (e *ProviderFailure) Unwrap() error { return e.Err }
