package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnparseableCommand is returned when no command could be recognized in an utterance
	ErrUnparseableCommand = errors.New("command not understood")

	// ErrStoreNotFound is returned when the catalog has no store with the given ID
	ErrStoreNotFound = errors.New("store not found in catalog")

	// ErrCatalogUnavailable is returned when the catalog snapshot cannot be loaded
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrPendingNotFound is returned when a disambiguation token is unknown or expired
	ErrPendingNotFound = errors.New("pending disambiguation not found or expired")

	// ErrSelectionNotUnderstood is returned when a follow-up reply selects no candidate
	ErrSelectionNotUnderstood = errors.New("selection not understood")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
