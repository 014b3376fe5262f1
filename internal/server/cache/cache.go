// Package cache holds the read-through cache in front of the items table.
// Redis is used when an address is configured, an in-process map otherwise.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CollectionKey is the key under which a user's collection is cached.
func CollectionKey(userID string) string {
	return "collection:" + userID
}
