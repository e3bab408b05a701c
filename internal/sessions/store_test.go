package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danengatsby/poesisverse/internal/cache"
	"github.com/danengatsby/poesisverse/internal/config"
)

func setupTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{AddressRedis: mr.Addr()}
	c, err := cache.InitServer(context.Background(), cfg)
	require.NoError(t, err)

	return New(c, ttl), mr
}

func TestStore_CreateAndGet(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)

	id, err := store.Create("user-uid-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	session, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", session.UserUID)
	assert.True(t, session.IsAuthenticated)
}

func TestStore_GetUnknownID(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)

	session, err := store.Get("no-such-session")
	assert.Nil(t, session)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Destroy(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)

	id, err := store.Create("user-uid-1")
	require.NoError(t, err)

	require.NoError(t, store.Destroy(id))

	_, err = store.Get(id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ExpiresByTTL(t *testing.T) {
	store, mr := setupTestStore(t, time.Minute)

	id, err := store.Create("user-uid-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)

	first, err := store.Create("user-uid-1")
	require.NoError(t, err)
	second, err := store.Create("user-uid-2")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, store.Destroy(first))

	session, err := store.Get(second)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-2", session.UserUID)
}
