package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
)

func newTestMemory(t *testing.T, size int) (*MemoryClient, *time.Time) {
	t.Helper()
	c := NewMemoryClient(size)
	t.Cleanup(func() { _ = c.Close() })
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryClient_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemory(t, 10)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("ملخص"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ملخص", string(got))

	got[0] = 'x'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ملخص", string(again))
}

func TestMemoryClient_Expiry(t *testing.T) {
	ctx := context.Background()
	c, now := newTestMemory(t, 10)

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))

	*now = now.Add(2 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)

	c.purge()
	assert.Equal(t, 1, c.entries.Len())
}

func TestMemoryClient_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemory(t, 2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	// reading a makes b the eviction candidate even though it expires first
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.entries.Len())
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3b"), time.Hour))
	assert.Equal(t, 2, c.entries.Len())
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemory(t, 10)

	require.NoError(t, c.Set(ctx, "completion:general_chat:x", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "completion:constitutional_chat:y", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "other", []byte("3"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, CompletionPrefix("general_chat")))
	assert.Equal(t, 2, c.entries.Len())

	require.NoError(t, c.DeleteByPrefix(ctx, CompletionPrefix("")))
	assert.Equal(t, 1, c.entries.Len())

	require.NoError(t, c.Delete(ctx, "other"))
	assert.Equal(t, 0, c.entries.Len())
}

func TestCompletionKey(t *testing.T) {
	a := CompletionKey("general_chat", "gpt-4o-mini", "comprehensive", "نص", 512)
	b := CompletionKey("general_chat", "gpt-4o-mini", "comprehensive", "نص", 512)
	c := CompletionKey("general_chat", "gpt-4o-mini", "comprehensive", "نص", 256)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "completion:general_chat:gpt-4o-mini:comprehensive:")
	assert.True(t, strings.HasPrefix(a, CompletionPrefix("general_chat")))
	assert.False(t, strings.HasPrefix(a, CompletionPrefix("constitutional_chat")))
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Driver: "memory", MaxEntries: 5})
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)
	require.NoError(t, c.Close())

	_, err = New(config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)
}
