package refresher

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"podcastd/internal/util"
	"podcastd/pkg/feed"
	"podcastd/pkg/fetch"
	"podcastd/pkg/url"
)

func (r *Refresher) refresh(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	logging.L(ctx).Infof("Refreshing %d feeds...", len(r.feeds))

	feeds := make(chan *url.URL)
	results := make(chan FeedResult)

	var workers sync.WaitGroup
	for range r.config.Concurrency {
		workers.Go(func() {
			for feedURL := range feeds {
				results <- r.refreshFeed(ctx, feedURL)
			}
		})
	}

	go func() {
		for _, feedURL := range r.feeds {
			feeds <- feedURL
		}
		close(feeds)

		workers.Wait()
		close(results)
	}()

	for feedResult := range results {
		result.Feeds = append(result.Feeds, feedResult)
		if feedResult.Status == StatusSuccess {
			result.Podcasts++
			result.Episodes += feedResult.Episodes
		}
	}

	slices.SortFunc(result.Feeds, func(a, b FeedResult) int {
		return strings.Compare(a.FeedURL, b.FeedURL)
	})

	r.cache.Retain(ctx, r.feeds)

	result.FinishedAt = time.Now()
	r.metrics.refreshDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	if result.Failed() == 0 {
		r.metrics.refreshTime.SetToCurrentTime()
	}

	logging.L(ctx).Infof("Refresh finished: %d/%d feeds, %d episodes.",
		result.Podcasts, len(result.Feeds), result.Episodes)

	return result
}

// refreshFeed pulls one feed into the store. Every failure mode, a panic
// included, is contained in the returned result.
func (r *Refresher) refreshFeed(ctx context.Context, feedURL *url.URL) FeedResult {
	ctx = fetch.WithContext(ctx, r.metrics.fetchDuration.WithLabelValues(feedURL.String()))
	result := FeedResult{FeedURL: feedURL.String()}

	var panicErr error
	podcast, cached, err := func() (_ *feed.Podcast, _ bool, retErr error) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				panicErr = fmt.Errorf("feed refresh has panicked: %v\n%s", err, bytes.TrimRight(stack, "\n"))
			}
		}()
		return r.cache.Cached(ctx, feedURL, r.fetchPodcast)
	}()

	switch {
	case panicErr != nil:
		logging.L(ctx).Errorf("Failed to refresh %s: %s", feedURL, panicErr)
		result.Status, result.Err = StatusPanic, panicErr

	case util.IsTemporaryError(err):
		logging.L(ctx).Warnf("Failed to refresh %s: %s.", feedURL, err)
		result.Status, result.Err = StatusUnavailable, err

	case err != nil:
		logging.L(ctx).Errorf("Failed to refresh %s: %s.", feedURL, err)
		result.Status, result.Err = StatusError, err

	default:
		result.Cached = cached
		result.Episodes = len(podcast.Episodes)

		if err := r.store.ApplyFeed(ctx, podcast); err != nil {
			logging.L(ctx).Errorf("Failed to store %s: %s.", feedURL, err)
			result.Status, result.Err = StatusError, err
		} else {
			result.Status = StatusSuccess
		}
	}

	r.metrics.feedStatus.WithLabelValues(result.FeedURL, string(result.Status)).Inc()
	return result
}

func (r *Refresher) fetchPodcast(ctx context.Context, feedURL *url.URL) (*feed.Podcast, error) {
	return fetch.Podcast(ctx, feedURL,
		fetch.WithTimeout(r.config.FetchTimeout.Value()),
		fetch.WithRetries(r.config.FetchRetries),
		fetch.ParseOptions(feed.BlockCategories(r.blocklist)))
}
