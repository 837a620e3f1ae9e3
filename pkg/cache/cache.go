// Package cache stores placement results keyed by scene content and request
// options.
//
// Three backends implement [Cache]: [NullCache] disables caching,
// [FileCache] keeps entries on disk for the CLI, and [RedisCache] shares
// entries between server replicas. Keys come from a [Keyer], so callers never
// build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// PlacementTTL bounds how long a placement result is reused.
	PlacementTTL = 7 * 24 * time.Hour

	// SceneTTL bounds how long a stored scene document stays addressable
	// by its hash.
	SceneTTL = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing; every Get misses. It backs --no-cache and the
// "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
