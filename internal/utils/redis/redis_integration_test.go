package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
)

// Integration test against a real Redis. Skipped unless REDIS_HOST is set.
func TestRedis_Integration(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set; skipping integration test")
	}
	port := 6379
	if p := os.Getenv("REDIS_PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		require.NoError(t, err)
	}

	r, err := NewRedis(&config.RedisEnvConfig{
		RedisHost:     host,
		RedisPort:     port,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	})
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))

	prefix := fmt.Sprintf("territory-ranker:test:%d:", time.Now().UnixNano())
	withTTL, noTTL, missing := prefix+"ttl", prefix+"plain", prefix+"missing"
	t.Cleanup(func() {
		r.client.Do(context.Background(), r.client.B().Del().Key(withTTL, noTTL).Build())
	})

	t.Run("missing key reads as empty", func(t *testing.T) {
		v, err := r.Get(ctx, missing)
		require.NoError(t, err)
		assert.Equal(t, "", v)
	})

	t.Run("set with ttl", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, withTTL, "ranked", time.Minute))
		v, err := r.Get(ctx, withTTL)
		require.NoError(t, err)
		assert.Equal(t, "ranked", v)

		ttl, err := r.client.Do(ctx, r.client.B().Pttl().Key(withTTL).Build()).AsInt64()
		require.NoError(t, err)
		assert.Greater(t, ttl, int64(0))
		assert.LessOrEqual(t, ttl, time.Minute.Milliseconds())
	})

	t.Run("set without ttl", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, noTTL, "kept", 0))
		v, err := r.Get(ctx, noTTL)
		require.NoError(t, err)
		assert.Equal(t, "kept", v)

		ttl, err := r.client.Do(ctx, r.client.B().Pttl().Key(noTTL).Build()).AsInt64()
		require.NoError(t, err)
		assert.Equal(t, int64(-1), ttl)
	})
}
