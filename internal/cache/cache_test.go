// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/config"
)

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, "c", []byte("3"), 0))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(10)
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(config.CacheConfig{Backend: "memory", MaxEntries: 5})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	r := newRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	defer r.Close()
	assert.Equal(t, "doclens:abc", r.key("abc"))
}

// Runs only when a Redis server is available.
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("DOCLENS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DOCLENS_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	r, err := NewRedisStore(RedisConfig{Addr: addr, Prefix: "doclens-test:"})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
