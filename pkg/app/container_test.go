package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.connectwisedev.com/catalog-service/pkg/cache"
	"gitlab.connectwisedev.com/catalog-service/pkg/config"
)

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	c, err := newCache(ctx, config.Config{CacheBackend: "memory"}, log)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)

	mr := miniredis.RunT(t)
	c, err = newCache(ctx, config.Config{CacheBackend: "redis", RedisAddr: mr.Addr()}, log)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, c)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	_, err = newCache(ctx, config.Config{CacheBackend: "memcached"}, log)
	assert.ErrorContains(t, err, "unknown cache backend")
}

func TestNewCacheToleratesUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	c, err := newCache(context.Background(), config.Config{CacheBackend: "redis", RedisAddr: addr}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
