package engine

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要本地 redis：NEWSBOT_TEST_REDIS=127.0.0.1:6379
func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("NEWSBOT_TEST_REDIS")
	if addr == "" {
		t.Skip("NEWSBOT_TEST_REDIS not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	job := "test:redis-guard:" + time.Now().Format("150405.000000")
	g := NewRunGuard(rdb, time.Minute)

	release, ok, err := g.Acquire(ctx, job)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = g.Acquire(ctx, job)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := rdb.TTL(ctx, lockPrefix+job).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	release()
	exists, err := rdb.Exists(ctx, lockPrefix+job).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 0, exists)

	release2, ok, err := g.Acquire(ctx, job)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}
