package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type cachedValue struct {
	Title string `json:"title"`
}

func TestRedisCacheRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	var out cachedValue
	assert.ErrorIs(t, repo.Get(ctx, "settings:site", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "settings:site", cachedValue{Title: "X"}, time.Minute))
	require.NoError(t, repo.Get(ctx, "settings:site", &out))
	assert.Equal(t, "X", out.Title)

	require.NoError(t, repo.DeletePrefix(ctx, "settings:"))
	assert.False(t, mr.Exists("settings:site"))
}

func TestNilRedisCacheRepositoryAlwaysMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var out cachedValue
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", out, time.Minute))
}

func TestMemoryCacheRepository(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "settings:site", cachedValue{Title: "Y"}, 0))
	var out cachedValue
	require.NoError(t, repo.Get(ctx, "settings:site", &out))
	assert.Equal(t, "Y", out.Title)

	require.NoError(t, repo.DeletePrefix(ctx, "settings:"))
	assert.ErrorIs(t, repo.Get(ctx, "settings:site", &out), appErrors.ErrCacheMiss)
}
