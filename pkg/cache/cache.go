// Package cache provides pluggable storage for HTTP response caching.
//
// The scraper re-fetches the same package pages across runs; caching keeps
// repeated runs cheap and polite to packagecontrol.io. Three backends are
// provided:
//   - FileCache: file-based storage for CLI usage (default)
//   - RedisCache: shared storage when several scrapers run against one cache
//   - NullCache: disables caching entirely
//
// Keys are opaque strings; values are raw bytes (typically a response body).
// Entries carry a TTL and expire silently, surfacing as cache misses.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value by key. The second return value reports whether
	// the key was present and fresh; an expired or missing entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
