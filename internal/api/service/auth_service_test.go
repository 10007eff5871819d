package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/pkg/logger"
)

func TestAuthService(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newMemStore()
	store.addUser(alice, true)
	svc := NewAuthService(repository.NewSessionRepository(rdb), memUsers{store}, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, mr.Set("session:s1", alice))
	require.NoError(t, mr.Set("session:s2", `{"userId":"ghost"}`))

	resp, err := svc.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, alice, resp.UserID)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.True(t, resp.NotificationEnabled)

	_, err = svc.ResolveSession(ctx, "s2")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ResolveSession(ctx, "unknown")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.Logout(ctx, "s1"))
	assert.False(t, mr.Exists("session:s1"))
	_, err = svc.ResolveSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
