package indexer

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNothingToIndex is returned when the store yields no indexable profiles.
	ErrNothingToIndex = errors.New("nothing to index")

	// ErrSourceRequired is returned when no profile source is supplied.
	ErrSourceRequired = errors.New("profile source is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRepositoryRequired is returned when no index repository is supplied.
	ErrRepositoryRequired = errors.New("index repository is required")
)
