package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("lock: timed out waiting for key")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a key with SET NX PX and a random token so that only the
// owner releases it. TTL bounds how long a crashed holder blocks others.
type RedisLocker struct {
	Client   *redis.Client
	Prefix   string
	TTL      time.Duration
	Wait     time.Duration
	Interval time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		Client:   client,
		Prefix:   "paywave:lock:",
		TTL:      ttl,
		Wait:     ttl,
		Interval: 25 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.Prefix + key
	token := uuid.NewString()

	wait := l.Wait
	if wait <= 0 {
		wait = l.TTL
	}
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.Client.SetNX(ctx, k, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Interval):
		}
	}

	return func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.Client, []string{k}, token).Err()
	}, nil
}
