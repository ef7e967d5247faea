package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisPresenceStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPresenceStore(client), srv
}

func TestRedisPresenceStore_LastWriterWins(t *testing.T) {
	store, srv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPresence(ctx, "user-a", true))
	require.NoError(t, store.SetPresence(ctx, "user-b", true))

	online, err := srv.IsMember(onlineUsersKey, "user-a")
	require.NoError(t, err)
	assert.True(t, online)

	// a second session of user-a closing flips the flag even though
	// another session may still be open
	require.NoError(t, store.SetPresence(ctx, "user-a", true))
	require.NoError(t, store.SetPresence(ctx, "user-a", false))

	online, err = srv.IsMember(onlineUsersKey, "user-a")
	require.NoError(t, err)
	assert.False(t, online)

	count, err := store.OnlineCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisPresenceStore_Unavailable(t *testing.T) {
	store, srv := newTestStore(t)
	srv.Close()

	err := store.SetPresence(context.Background(), "user-a", true)
	assert.Error(t, err)
}
