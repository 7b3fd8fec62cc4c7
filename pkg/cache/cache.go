// Package cache provides byte-level caches for API responses and computed
// layouts.
//
// All backends implement [Cache]. [NullCache] disables caching,
// [FileCache] suits the CLI, and [RedisCache] is shared between API
// server instances. Keys are built by a [Keyer] so that every layer of
// the pipeline agrees on naming.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. A ttl of 0 means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
