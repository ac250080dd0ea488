// Package cache provides a Redis-backed JSON cache with per-scope version keys.
//
// Bumping a scope's version makes every key built for that scope unreachable,
// so writers invalidate without knowing which entries exist. All methods are
// safe on a nil *Cache, in which case loaders are called directly.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	versionKeyPrefix = "gestor:version:"
	// sharedLoadTimeout bounds a collapsed load, which outlives the caller that started it
	sharedLoadTimeout = 30 * time.Second
)

// Loader produces the value to cache on a miss
type Loader func(ctx context.Context) (interface{}, error)

// Cache wraps a Redis client with versioned keys and request collapsing
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

// New instantiates the cache helper. A nil client yields a pass-through cache.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current version of a scope, initialising it when missing
func (c *Cache) Version(ctx context.Context, scope string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	key := versionKeyPrefix + scope
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so concurrent initialisers agree on the first version
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes scope, parts and the scope's current version into a key
func (c *Cache) BuildKey(ctx context.Context, scope string, parts ...string) (string, error) {
	base := strings.Join(append([]string{scope}, parts...), ":")
	if c == nil {
		return base, nil
	}
	ver, err := c.Version(ctx, scope)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", base, ver), nil
}

// FetchJSON decodes the cached value at key into dest, or runs loader and caches its result.
// Concurrent misses on the same key share one loader call. A Redis read failure falls back
// to the loader instead of failing the request.
func (c *Cache) FetchJSON(ctx context.Context, key string, ttl time.Duration, dest interface{}, loader Loader) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return json.Unmarshal(payload, dest)
	}

	raw, err := Collapse(ctx, &c.sf, key, sharedLoadTimeout, func(ctx context.Context) ([]byte, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		_ = c.client.Set(ctx, key, raw, ttl).Err()
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Collapse runs load once for concurrent callers sharing key. The load is detached from the
// caller that started it and bounded by timeout, so a cancelled request does not fail the others;
// each caller stops waiting when its own context ends.
func Collapse(ctx context.Context, group *singleflight.Group, key string, timeout time.Duration, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Bump invalidates every key of a scope
func (c *Cache) Bump(ctx context.Context, scope string) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKeyPrefix+scope).Err()
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func roundTrip(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
