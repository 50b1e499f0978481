package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	type quote struct {
		Tier  string `json:"tier"`
		Total string `json:"total"`
	}
	require.NoError(t, SetJSON(ctx, c, "q", quote{Tier: "starter_pro", Total: "7500000"}))

	var got quote
	ok, err := GetJSON(ctx, c, "q", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7500000", got.Total)

	require.NoError(t, c.Set(ctx, "bad", []byte("{")))
	_, err = GetJSON(ctx, c, "bad", &got)
	assert.Error(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	c, err = New(config.CacheConfig{Enabled: true, TTLSeconds: 60})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("BIZNES_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BIZNES_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: addr}), time.Minute)
	defer c.Close()

	key := uuid.NewString()
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte("quote")))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "quote", string(got))
}
