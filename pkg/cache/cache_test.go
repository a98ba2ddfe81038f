package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"podcastd/pkg/testutil"
	"podcastd/pkg/url"
)

func TestCache(t *testing.T) {
	ctx := testutil.Context(t)
	feedURL := url.MustURL("https://example.org/feed")

	var calls int
	fetch := func(ctx context.Context, url *url.URL) (int, error) {
		calls++
		return calls, nil
	}

	cache := New[int](time.Minute)

	value, cached, err := cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 1, value)

	value, cached, err = cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, 1, value)

	cache.Retain(ctx, []*url.URL{feedURL})
	_, cached, err = cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.True(t, cached)

	cache.Retain(ctx, nil)
	value, cached, err = cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 2, value)

	cache.Purge()
	value, cached, err = cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 3, value)
}

func TestCacheError(t *testing.T) {
	ctx := testutil.Context(t)
	feedURL := url.MustURL("https://example.org/feed")

	var calls int
	fetch := func(ctx context.Context, url *url.URL) (int, error) {
		calls++
		return 0, errors.New("feed is unavailable")
	}

	cache := New[int](time.Minute)

	_, cached, err := cache.Cached(ctx, feedURL, fetch)
	require.Error(t, err)
	require.False(t, cached)

	_, _, err = cache.Cached(ctx, feedURL, fetch)
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestCacheExpiry(t *testing.T) {
	ctx := testutil.Context(t)
	feedURL := url.MustURL("https://example.org/feed")

	var calls int
	fetch := func(ctx context.Context, url *url.URL) (int, error) {
		calls++
		return calls, nil
	}

	cache := New[int](10 * time.Millisecond)

	_, _, err := cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	value, cached, err := cache.Cached(ctx, feedURL, fetch)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 2, value)
}
