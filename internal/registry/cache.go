package registry

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ValidationCache remembers a credential's last validate() outcome for a
// short TTL so repeated CLI verbose-mode calls and health checks don't
// re-contact the host's identity endpoint on every call.
type ValidationCache interface {
	Get(ctx context.Context, credentialID string) (Validation, bool)
	Set(ctx context.Context, credentialID string, v Validation, ttl time.Duration)
}

// memoryCache is the zero-dependency default: an in-process map guarded by
// a mutex, adequate for a single-instance deployment.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value   Validation
	expires time.Time
}

// NewMemoryCache returns the default in-process ValidationCache.
func NewMemoryCache() ValidationCache {
	return &memoryCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, credentialID string) (Validation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[credentialID]
	if !ok || time.Now().After(entry.expires) {
		return Validation{}, false
	}
	return entry.value, true
}

func (c *memoryCache) Set(_ context.Context, credentialID string, v Validation, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[credentialID] = memoryCacheEntry{value: v, expires: time.Now().Add(ttl)}
}

// redisCache backs the ValidationCache with Redis, for multi-instance
// deployments where each process would otherwise re-validate independently.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an already-configured Redis client.
func NewRedisCache(client *redis.Client) ValidationCache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, credentialID string) (Validation, bool) {
	res := c.client.HGetAll(ctx, "greport:validation:"+credentialID)
	fields, err := res.Result()
	if err != nil || len(fields) == 0 {
		return Validation{}, false
	}
	return Validation{
		Organization: fields["organization"],
		Status:       Status(fields["status"]),
		Login:        fields["login"],
	}, true
}

func (c *redisCache) Set(ctx context.Context, credentialID string, v Validation, ttl time.Duration) {
	key := "greport:validation:" + credentialID
	c.client.HSet(ctx, key, map[string]any{
		"organization": v.Organization,
		"status":       string(v.Status),
		"login":        v.Login,
	})
	c.client.Expire(ctx, key, ttl)
}
