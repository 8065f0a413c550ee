package corpus

import "errors"

// Domain errors, distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced work, chapter, passage or term
	// does not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity indicates a link references a term or passage outside
	// its declared work scope, or a renumbering would strand links.
	// Fatal for the enclosing transaction.
	ErrIntegrity = errors.New("integrity violation")
)
