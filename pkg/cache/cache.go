// Package cache stores downloaded assets, primarily the plotly.js bundle.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries on the local filesystem, used by the CLI
//   - [RedisCache]: entries in a shared Redis instance, used by the preview server
//   - [NullCache]: caching disabled
//
// Keys are free-form strings. [BundleKey] derives the key used for a
// library download, and [WithPrefix] scopes a cache so several tools can
// share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
