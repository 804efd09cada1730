//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisClient(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	c, err := NewRedisClient(config.RedisConfig{Addr: addr, PoolSize: 2, Prefix: "dac-test:"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	key := CompletionKey("general_chat", "gpt-4o-mini", "quick", "نص العقد", 512)
	require.NoError(t, c.Set(ctx, key, []byte(`{"text":"ملخص"}`), time.Minute))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"ملخص"}`, string(got))

	require.NoError(t, c.DeleteByPrefix(ctx, CompletionPrefix("general_chat")))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNew_Redis(t *testing.T) {
	addr := startRedis(t)

	c, err := New(config.CacheConfig{Driver: "redis", Redis: config.RedisConfig{Addr: addr}})
	require.NoError(t, err)
	assert.IsType(t, &RedisClient{}, c)
	require.NoError(t, c.Close())
}
