package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
)

func TestRedisSessionLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRedisSessionRepository(client, "test", time.Hour)
	ctx := context.Background()

	user := &models.User{IndexNumber: "1000", Name: "Before"}
	session, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:session:"+session.ID))
	assert.Greater(t, mr.TTL("test:session:"+session.ID), time.Duration(0))

	user.Name = "After"
	require.NoError(t, repo.RefreshUser(ctx, user))

	loaded, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", loaded.User.Name)
	assert.Greater(t, mr.TTL("test:session:"+session.ID), time.Duration(0))

	require.NoError(t, repo.Delete(ctx, session.ID))
	_, err = repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRedisSessionRepository(client, "test", time.Minute)
	ctx := context.Background()

	session, err := repo.Create(ctx, &models.User{IndexNumber: "1000"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, repo.RefreshUser(ctx, &models.User{IndexNumber: "1000"}))
}

func TestMemorySessionRefreshOnlyTouchesSameUser(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	mine, err := repo.Create(ctx, &models.User{IndexNumber: "1000", Name: "Me"})
	require.NoError(t, err)
	other, err := repo.Create(ctx, &models.User{IndexNumber: "1001", Name: "Other"})
	require.NoError(t, err)

	require.NoError(t, repo.RefreshUser(ctx, &models.User{IndexNumber: "1000", Name: "Me v2"}))

	a, err := repo.Get(ctx, mine.ID)
	require.NoError(t, err)
	b, err := repo.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Me v2", a.User.Name)
	assert.Equal(t, "Other", b.User.Name)

	require.NoError(t, repo.Delete(ctx, mine.ID))
	_, err = repo.Get(ctx, mine.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, repo.Delete(ctx, "unknown"))
}
