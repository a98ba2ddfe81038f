package fetch

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"

	"podcastd/internal/util"
	"podcastd/pkg/feed"
	"podcastd/pkg/url"
)

// Podcast feeds are served with every imaginable Content-Type, so the
// allowlist is intentionally loose. text/html is excluded: a feed URL that
// responds with a web page is a misconfiguration we want to surface.
var podcastMediaTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
	"application/xml",
	"text/xml",
	"text/plain",
	"application/octet-stream",
}

// Podcast fetches and parses a single feed, retrying temporary errors with
// exponential backoff.
func Podcast(ctx context.Context, feedURL *url.URL, opts ...Option) (*feed.Podcast, error) {
	options := newOptions(opts)

	operation := func() (*feed.Podcast, error) {
		podcast, err := fetch(ctx, feedURL, podcastMediaTypes, func(body io.Reader) (*feed.Podcast, error) {
			return feed.Parse(feedURL.String(), body, options.parseOptions...)
		}, opts...)

		if err != nil && !util.IsTemporaryError(err) {
			return nil, backoff.Permanent(err)
		}
		return podcast, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 0

	return backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, options.retries), ctx))
}
