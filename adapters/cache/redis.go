package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// RedisCache stores quotes in Redis with SET EX
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the configured Redis
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.TypeInternal, "failed to connect to redis", err).
			WithContext("addr", cfg.RedisAddr)
	}
	return NewRedisCacheFromClient(client, cfg.TTL()), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttlOrDefault(ttl)}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.TypeInternal, "redis get failed", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, KeyPrefix+key, value, c.ttl).Err(); err != nil {
		return errors.Wrap(errors.TypeInternal, "redis set failed", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
