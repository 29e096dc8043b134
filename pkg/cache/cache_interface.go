package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used for sessions and flash messages.
// Values are JSON encoded by the implementation.
type Cache interface {
	// Get unmarshals the stored value into dest.
	// found = false means a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with a TTL. A zero TTL keeps the key forever.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
