// Package ratelimit implements C5: a sliding-window request counter keyed
// on API key or client IP, backed by an in-process map (single worker) or a
// shared Redis sorted set (multi-worker).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/greengate/screening/internal/interfaces"
	"github.com/redis/go-redis/v9"
)

// Info is one check's outcome.
type Info struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Backend is C5's contract (§4.4).
type Backend interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Info, error)
}

// NewBackend tries a Redis-backed shared limiter first; if ping fails it
// falls back to the in-process map and logs the fallback, matching the
// original create_rate_limiter factory (SPEC_FULL.md §1).
func NewBackend(addr, password string, db int, log interfaces.Logger) Backend {
	if addr == "" {
		log.Info("no redis address configured, using in-process rate limiter")
		return NewInMemoryBackend()
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, falling back to in-process rate limiter", zapErr(err)...)
		return NewInMemoryBackend()
	}

	return NewRedisBackend(client)
}

// InMemoryBackend is the single-worker-only sliding window: a map of
// timestamp slices guarded by a mutex, with periodic cleanup.
type InMemoryBackend struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	lastGC  time.Time
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{entries: map[string][]time.Time{}, lastGC: time.Now()}
}

func (b *InMemoryBackend) Check(_ context.Context, key string, limit int, window time.Duration) (Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	entries := pruneBefore(b.entries[key], cutoff)

	if time.Since(b.lastGC) > window {
		b.gc(cutoff)
		b.lastGC = now
	}

	if len(entries) >= limit {
		resetAt := entries[0].Add(window)
		b.entries[key] = entries
		return Info{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	entries = append(entries, now)
	b.entries[key] = entries

	return Info{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(entries),
		ResetAt:   now.Add(window),
	}, nil
}

func (b *InMemoryBackend) gc(cutoff time.Time) {
	for key, entries := range b.entries {
		pruned := pruneBefore(entries, cutoff)
		if len(pruned) == 0 {
			delete(b.entries, key)
		} else {
			b.entries[key] = pruned
		}
	}
}

func pruneBefore(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && entries[i].Before(cutoff) {
		i++
	}
	return entries[i:]
}

// RedisBackend is the shared sorted-set-per-client implementation: each
// member is a unique "<timestamp>:<uuid>" string scored by arrival time.
// A check prunes, adds its own member and counts in one MULTI/EXEC
// transaction, and removes its member again when the window was already
// full, so concurrent checks at the boundary cannot both succeed (§4.4).
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Check(ctx context.Context, key string, limit int, window time.Duration) (Info, error) {
	redisKey := "ratelimit:" + key
	now := time.Now()
	cutoff := now.Add(-window)

	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())
	pipe := b.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.Expire(ctx, redisKey, window+10*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Info{}, err
	}

	count := card.Val() - 1 // entries admitted ahead of this check
	if count >= int64(limit) {
		b.client.ZRem(ctx, redisKey, member)
		resetAt := now.Add(window)
		if results, err := oldest.Result(); err == nil && len(results) > 0 {
			resetAt = time.Unix(0, int64(results[0].Score)).Add(window)
		}
		return Info{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Info{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(count) - 1,
		ResetAt:   now.Add(window),
	}, nil
}
