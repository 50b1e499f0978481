// Package cache stores computed quotes keyed by a hash of the request.
// Backends: Redis for shared deployments, memory for a single process.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// KeyPrefix namespaces quote keys
const KeyPrefix = "biznes:quote:"

// Cache is a byte cache with a fixed time-to-live
type Cache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value for the cache TTL
	Set(ctx context.Context, key string, value []byte) error

	// Close releases backend resources
	Close() error
}

// New builds the cache described by cfg. A disabled cache is a Nop.
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	if cfg.RedisAddr == "" {
		return NewMemoryCache(cfg.TTL()), nil
	}
	c, err := NewRedisCache(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetJSON decodes a cached value into v
func GetJSON(ctx context.Context, c Cache, key string, v interface{}) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrap(errors.TypeInternal, "corrupt cache entry", err).WithContext("key", key)
	}
	return true, nil
}

// SetJSON encodes v and stores it
func SetJSON(ctx context.Context, c Cache, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to encode cache entry", err)
	}
	return c.Set(ctx, key, data)
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error { return nil }
func (Nop) Close() error { return nil }

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 15 * time.Minute
	}
	return ttl
}
