// Package cache provides small byte caches used around the engine: the
// decode scanner memoizes parsed embedded presets in a memory cache, and the
// CLI caches rendered preset visualizations in a file cache.
//
// All backends implement the same [Cache] interface, so callers pick a
// backend at construction time and stay agnostic afterwards.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
