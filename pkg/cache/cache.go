// Package cache provides byte-level caching for pipeline stages.
//
// Layout passes over large diagrams and Graphviz renders are the expensive
// stages, so the pipeline caches both: layouts keyed by diagram content hash
// plus geometry, artifacts keyed by layout hash plus render options. The
// [Keyer] centralizes key construction so every option that changes the
// output is part of the key.
//
// Two implementations are provided: [FileCache] for CLI usage and
// [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per cached stage. Layouts are pure functions of their key, so the
// TTLs exist to bound disk usage rather than staleness.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-level key-value store with TTL support.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
