package cache

import (
	"context"
	"time"
)

// Adapter is the key/value capability metadata stores persist rows through.
// Implementations must be safe for concurrent use without external locking
// and must bound every remote call by the configured timeout.
type Adapter interface {
	// Get returns the stored bytes for key. A missing or expired entry is
	// reported as found == false with a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A zero ttl stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear flushes every entry reachable under the adapter's configuration.
	Clear(ctx context.Context) error

	// Close releases connections held by the adapter.
	Close() error
}

// Constructor builds an Adapter from fully resolved options.
type Constructor func(ctx context.Context, opts Options) (Adapter, error)
