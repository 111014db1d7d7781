package cache

import "errors"

var (
	// ErrKeyNotFound is returned when a key was never stored or was deleted.
	ErrKeyNotFound = errors.New("cache: key not found")
	// ErrKeyExpired is returned by the memory backend for a key whose TTL elapsed.
	ErrKeyExpired = errors.New("cache: key expired")
)
