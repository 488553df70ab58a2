// Package cache provides in-process caches keyed by string.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// ContentKey derives a cache key from raw bytes so that identical payloads
// share one entry regardless of their file name.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}
