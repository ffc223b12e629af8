package caching

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = cache.ErrCacheMiss

type ReadOnlyCache interface {
	Get(ctx context.Context, key string, target any) error
}

type Cache interface {
	ReadOnlyCache
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func UseCache[T any](ctx context.Context, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	return UseCacheWithRO(ctx, cash, cash, key, ttl, callback)
}

// UseCacheWithRO reads key from the read-only replica and fills it through the
// primary cache on a miss.
func UseCacheWithRO[T any](ctx context.Context, roCash ReadOnlyCache, cash Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	var v T
	err := roCash.Get(ctx, key, &v)
	if !errors.Is(err, cache.ErrCacheMiss) {
		return v, err
	}

	v, err = callback()
	if err != nil {
		return v, err
	}

	// fire and forget
	//nolint:errcheck
	cash.Set(ctx, key, v, ttl)
	return v, nil
}

// Invalidate deletes every key. A key that is already gone is not an error.
func Invalidate(ctx context.Context, cash Cache, keys ...string) error {
	var errs []error
	for _, key := range keys {
		err := cash.Delete(ctx, key)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type CacheRedis struct {
	instance *cache.Cache
}

func (c *CacheRedis) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *CacheRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *CacheRedis) Delete(ctx context.Context, key string) error {
	return c.instance.Delete(ctx, key)
}

func NewCacheRedis(client redis.UniversalClient, withLocalCache bool) (*CacheRedis, error) {
	var localCache cache.LocalCache
	if withLocalCache {
		localCache = cache.NewTinyLFU(10000, time.Minute)
	}
	return &CacheRedis{cache.New(&cache.Options{
		Redis:      client,
		LocalCache: localCache,
	})}, nil
}

// NewCacheLocal returns an in-process cache with no redis behind it.
func NewCacheLocal(size int, ttl time.Duration) *CacheRedis {
	return &CacheRedis{cache.New(&cache.Options{
		LocalCache: cache.NewTinyLFU(size, ttl),
	})}
}
