// Package cache provides the caching layer for layout results.
//
// Laying out a large IR graph is expensive and snapshots are immutable, so a
// layout computed once for a given snapshot and option set is valid forever.
// The cache key captures both; see [Keyer].
//
// Three backends are provided: [FileCache] for CLI usage, [RedisCache] for
// the serve mode, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Layouts are content-addressed and never go stale; the
// TTL only bounds disk usage.
const (
	TTLLayout = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache discards every write and misses every read. It stands in for a
// real backend when caching is disabled, keeping callers free of nil checks.
type NullCache struct{}

// NewNullCache returns the disabled-cache backend.
func NewNullCache() Cache { return NullCache{} }

var _ Cache = NullCache{}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
