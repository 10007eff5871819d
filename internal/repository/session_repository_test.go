package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	repo := NewSessionRepository(rdb)

	require.NoError(t, mr.Set("session:plain", "u1"))
	require.NoError(t, mr.Set("session:json", `{"userId":"u2","email":"u2@example.com"}`))
	require.NoError(t, mr.Set("session:broken", `{"userId":`))

	userID, err := repo.FindUserID(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	userID, err = repo.FindUserID(ctx, "json")
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)

	userID, err = repo.FindUserID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, userID)

	_, err = repo.FindUserID(ctx, "broken")
	assert.Error(t, err)

	require.NoError(t, repo.Delete(ctx, "plain"))
	assert.False(t, mr.Exists("session:plain"))
}
