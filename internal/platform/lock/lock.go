// Package lock provides per-key mutual exclusion for refresh runs.
//
// Nothing in the pipeline prevents a discovery job and a staleness sweep from
// dispatching a refresh for the same process number at the same time; both
// would race on the snapshot overwrite and the party full-replace. A refresh
// must hold the lock for its number for the whole run.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"procsync/pkg/platform/sentinel"
)

// Unlock releases a held lock. Safe to call once.
type Unlock func(ctx context.Context)

// Locker grants exclusive ownership of a key for at most ttl.
// Acquire returns sentinel.ErrLocked when the key is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

// Memory is an in-process locker for tests and single-binary runs.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

func (m *Memory) Acquire(_ context.Context, key string, _ time.Duration) (Unlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return nil, sentinel.ErrLocked
	}
	m.held[key] = struct{}{}
	return func(context.Context) {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

// Redis implements Locker with SET NX PX so the exclusion holds across
// worker replicas. The TTL bounds how long a crashed worker keeps a
// process locked.
type Redis struct {
	client goredis.Cmdable
	prefix string
}

func NewRedis(client goredis.Cmdable) *Redis {
	return &Redis{client: client, prefix: "procsync:lock:"}
}

// releaseScript deletes the lock only if this holder still owns it, so a
// lock that expired and was re-acquired elsewhere is never released by the
// previous owner.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	token := uuid.NewString()
	name := r.prefix + key

	ok, err := r.client.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, sentinel.ErrLocked
	}

	return func(ctx context.Context) {
		_ = releaseScript.Run(ctx, r.client, []string{name}, token).Err()
	}, nil
}
