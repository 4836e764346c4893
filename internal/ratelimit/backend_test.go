package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBackend_AllowsUnderLimitRejectsOver(t *testing.T) {
	b := NewInMemoryBackend()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := b.Check(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, info.Allowed)
	}

	info, err := b.Check(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)
}

func TestInMemoryBackend_WindowSlides(t *testing.T) {
	b := NewInMemoryBackend()
	ctx := context.Background()

	info, err := b.Check(ctx, "client-b", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	info, err = b.Check(ctx, "client-b", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	time.Sleep(20 * time.Millisecond)

	info, err = b.Check(ctx, "client-b", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRedisBackend_AllowsUnderLimitRejectsOver(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		info, err := backend.Check(ctx, "key:abc", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, info.Allowed)
	}

	info, err := backend.Check(ctx, "key:abc", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, info.Allowed)
}
