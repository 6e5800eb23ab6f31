package cache

import "errors"

// Canonical, backend-neutral errors stores must return.
var (
	// ErrNotFound signals a missing or hard-expired entry.
	ErrNotFound = errors.New("cache: not found")
	// ErrBackend wraps connectivity or protocol failures of the backing
	// store. GetOrFetch recovers from it by bypassing the cache.
	ErrBackend = errors.New("cache: backend unavailable")
)
