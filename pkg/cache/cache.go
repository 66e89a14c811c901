// Package cache stores pipeline results between runs.
//
// A [Cache] is a byte-oriented key/value store with optional expiry. The
// backends cover the places meshskel runs:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [BoltCache]: a single bbolt database file
//   - [MemoryCache]: a bounded in-process LRU (server default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so that every input and option that changes a
// result also changes its key.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and
	// unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ForestKeyOpts holds the load options that change how an input becomes a
// forest.
type ForestKeyOpts struct {
	UseSmoothVertices bool `json:"smooth,omitempty"`
	Root              *int `json:"root,omitempty"`
}

// ArtifactKeyOpts holds the render options of one artifact.
type ArtifactKeyOpts struct {
	Format    string            `json:"format"`
	Component int               `json:"component"`
	Scale     float64           `json:"scale,omitempty"`
	Header    map[string]string `json:"header,omitempty"`
	Radius    float64           `json:"radius,omitempty"`
	Label     *int              `json:"label,omitempty"`
	Reduced   bool              `json:"reduced,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ForestKey identifies a forest built from the input with the given hash.
	ForestKey(inputHash string, opts ForestKeyOpts) string
	// ArtifactKey identifies one rendered artifact of a forest.
	ArtifactKey(forestKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default [Keyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ForestKey implements [Keyer].
func (DefaultKeyer) ForestKey(inputHash string, opts ForestKeyOpts) string {
	return hashKey("forest", inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(forestKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", forestKey, opts)
}
