// Package errs defines the sentinel errors shared across the engine's stores
// and services. Match with errors.Is; wrap with fmt.Errorf("...: %w", ...).
package errs

import "errors"

var (
	// ErrNotFound: an unknown ukey, node id, or goal. Recoverable — upstream
	// surfaces it as "content unavailable".
	ErrNotFound = errors.New("not found")

	// ErrInvalid: malformed input such as an out-of-range rating or a
	// pre-clamp energy outside [0,1].
	ErrInvalid = errors.New("invalid input")

	// ErrIntegrity: an edge or user reference points at a node that does not
	// exist in the current content version. Aborts the transaction.
	ErrIntegrity = errors.New("referential integrity violation")

	// ErrContentStability: a proposed content update would drop a live ukey.
	// Blocks ingestion entirely; never reaches runtime.
	ErrContentStability = errors.New("content stability violation")

	// ErrVersionIncompatible: the opened store's schema major version does
	// not match the engine. The store refuses to open.
	ErrVersionIncompatible = errors.New("incompatible store schema version")

	// ErrTransientStorage: lock timeout or I/O hiccup. Retryable by the
	// caller with backoff.
	ErrTransientStorage = errors.New("transient storage error")
)
