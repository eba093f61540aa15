// Package locks holds the per-account busy flags that keep at most one
// balance check or mint in flight.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/pkg/redis"
)

// DefaultBusyTTL bounds how long a crashed holder can keep a Redis flag. A
// live holder keeps refreshing it, so long mints do not lose the flag.
const DefaultBusyTTL = 5 * time.Minute

// BusyGuard grants exclusive use of a key. Acquire returns ErrBusy when the
// key is already held; release is idempotent.
type BusyGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
	Held(ctx context.Context, key string) (bool, error)
}

// MemoryBusyGuard keeps flags in process memory.
type MemoryBusyGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryBusyGuard() *MemoryBusyGuard {
	return &MemoryBusyGuard{held: make(map[string]struct{})}
}

func (g *MemoryBusyGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		return nil, domainerrors.ErrBusy
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

func (g *MemoryBusyGuard) Held(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok, nil
}

var (
	redisSetNX         = redis.SetNX
	redisDelIfValue    = redis.DelIfValue
	redisExpireIfValue = redis.ExpireIfValue
	redisExists        = redis.Exists
)

// RedisBusyGuard shares flags across server instances. It rejects
// duplicates; it never replays a previous result.
type RedisBusyGuard struct {
	prefix       string
	ttl          time.Duration
	refreshEvery time.Duration
}

func NewRedisBusyGuard(prefix string, ttl time.Duration) *RedisBusyGuard {
	if prefix == "" {
		prefix = "tbond:busy"
	}
	if ttl <= 0 {
		ttl = DefaultBusyTTL
	}
	return &RedisBusyGuard{prefix: prefix, ttl: ttl, refreshEvery: ttl / 3}
}

func (g *RedisBusyGuard) Held(ctx context.Context, key string) (bool, error) {
	return redisExists(ctx, g.prefix+":"+key)
}

func (g *RedisBusyGuard) Acquire(ctx context.Context, key string) (func(), error) {
	storageKey := g.prefix + ":" + key
	token := uuid.NewString()

	ok, err := redisSetNX(ctx, storageKey, token, g.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerrors.ErrBusy
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(storageKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// the request context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, _ = redisDelIfValue(releaseCtx, storageKey, token)
		})
	}, nil
}

// keepAlive extends the flag's TTL until stop closes or the token is gone.
func (g *RedisBusyGuard) keepAlive(storageKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			extended, err := redisExpireIfValue(ctx, storageKey, token, g.ttl)
			cancel()
			if err == nil && !extended {
				return
			}
		}
	}
}
