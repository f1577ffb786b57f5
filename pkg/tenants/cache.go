// pkg/tenants/cache.go
package tenants

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedProvider is a redis read-through cache in front of another Provider.
// Only resolution lookups are cached (they run on every tenant request);
// claim state is always read from the underlying store so a fresh claim is
// visible immediately. Short TTL stands in for explicit invalidation on
// admin writes.
type cachedProvider struct {
	Provider
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

// NewCachedProvider wraps inner with a redis resolution cache. A nil client
// returns inner unchanged.
func NewCachedProvider(inner Provider, rdb *redis.Client, log *zap.SugaredLogger) Provider {
	if rdb == nil {
		return inner
	}
	return &cachedProvider{Provider: inner, rdb: rdb, ttl: 30 * time.Second, log: log}
}

func (c *cachedProvider) ResolveBySlug(ctx context.Context, slug string) (Tenant, error) {
	return c.resolve(ctx, "tenant:slug:"+slug, func() (Tenant, error) {
		return c.Provider.ResolveBySlug(ctx, slug)
	})
}

func (c *cachedProvider) ResolveByHost(ctx context.Context, host string) (Tenant, error) {
	return c.resolve(ctx, "tenant:host:"+host, func() (Tenant, error) {
		return c.Provider.ResolveByHost(ctx, host)
	})
}

func (c *cachedProvider) resolve(ctx context.Context, key string, load func() (Tenant, error)) (Tenant, error) {
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var t Tenant
		if json.Unmarshal(b, &t) == nil && t.ID != "" {
			return t, nil
		}
	}
	t, err := load()
	if err != nil {
		return Tenant{}, err
	}
	if b, err := json.Marshal(t); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Debugw("tenant cache set", "key", key, "err", err)
		}
	}
	return t, nil
}
