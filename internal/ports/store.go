package ports

import (
	"context"
	"time"
)

// Byte-value store with per-entry TTL, backing the cache layer.
// Entries are written wholesale and never patched in place.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
