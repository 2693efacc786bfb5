package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "orderdesk:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockKey builds the redis key guarding a named critical section.
func LockKey(name string) string {
	return lockPrefix + name
}

// TryLock takes the named lock for ttl without waiting. The returned release
// only deletes the key while this holder still owns it.
func (s *Store) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	key := LockKey(name)
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("store: lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("store: unlock %s: %w", name, err)
		}
		return nil
	}
	return release, true, nil
}
