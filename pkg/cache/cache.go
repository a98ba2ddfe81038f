package cache

import (
	"context"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	cache "github.com/go-pkgz/expirable-cache/v3"

	"podcastd/pkg/url"
)

// Cache keeps fetched values for a while, so that refreshes triggered
// shortly after one another don't hit the network again.
type Cache[T any] struct {
	cache cache.Cache[string, T]
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		cache: cache.NewCache[string, T]().WithTTL(ttl),
	}
}

// Cached returns the value for url, fetching and caching it on a miss. The
// flag reports whether the value came from the cache.
func (c *Cache[T]) Cached(
	ctx context.Context, url *url.URL,
	fetch func(ctx context.Context, url *url.URL) (T, error),
) (T, bool, error) {
	key := url.String()

	if value, ok := c.cache.Get(key); ok {
		logging.L(ctx).Debugf("Got %s from cache.", url)
		return value, true, nil
	}

	value, err := fetch(ctx, url)
	if err == nil {
		logging.L(ctx).Debugf("Add %s to cache.", url)
		c.cache.Add(key, value)
	}

	return value, false, err
}

// Purge drops everything, forcing the next refresh to hit the network.
func (c *Cache[T]) Purge() {
	c.cache.Purge()
}

// Retain drops cached values for URLs that are not on the list anymore.
func (c *Cache[T]) Retain(ctx context.Context, urls []*url.URL) {
	keep := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		keep[url.String()] = struct{}{}
	}

	c.cache.InvalidateFn(func(key string) bool {
		if _, ok := keep[key]; ok {
			return false
		}

		logging.L(ctx).Debugf("Drop %s from cache.", key)
		return true
	})
}
