package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/lock"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return srv, client
}

func TestRedisLocker_ShouldHoldKeyUntilUnlock(t *testing.T) {
	srv, client := setupRedis(t)
	l := lock.NewRedisLocker(client, time.Second)

	unlock, err := l.Lock(context.Background(), "settlement:PYW-1")
	require.NoError(t, err)
	require.True(t, srv.Exists("paywave:lock:settlement:PYW-1"))

	unlock()
	require.False(t, srv.Exists("paywave:lock:settlement:PYW-1"))
}

func TestRedisLocker_WhenHeld_ShouldTimeOut(t *testing.T) {
	_, client := setupRedis(t)
	l := lock.NewRedisLocker(client, time.Second)
	l.Wait = 30 * time.Millisecond
	l.Interval = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), "k")
	require.ErrorIs(t, err, lock.ErrLockTimeout)
}

func TestRedisLocker_Unlock_ShouldNotReleaseForeignToken(t *testing.T) {
	srv, client := setupRedis(t)
	l := lock.NewRedisLocker(client, time.Second)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	require.NoError(t, srv.Set("paywave:lock:k", "someone-else"))
	unlock()

	v, err := srv.Get("paywave:lock:k")
	require.NoError(t, err)
	require.Equal(t, "someone-else", v)
}
