package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/mo"
	"github.com/stretchr/testify/require"

	"podcastd/internal/config"
	"podcastd/internal/refresher"
	"podcastd/internal/store"
	"podcastd/pkg/feed"
	"podcastd/pkg/testutil"
)

func TestPodcastsEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, db, _ := testServer(t, ctx)

	june := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	may := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/gotime.rss", "Go Time", june, "Technology", "News")))
	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/daily.rss", "The Daily", may, "news")))
	require.NoError(t, db.Follow(ctx, "https://example.com/daily.rss"))

	podcasts := do[[]podcastResponse](t, http.MethodGet, server, "/podcasts", http.StatusOK)
	require.Equal(t, []podcastResponse{
		{
			FeedURL:      "https://example.com/gotime.rss",
			Title:        "Go Time",
			Link:         "https://example.com/",
			Description:  "<p>About Go Time.</p>",
			Author:       "Example Author",
			EpisodeCount: 2,
			LastEpisode:  "2025-06-02T15:00:00Z",
		},
		{
			FeedURL:      "https://example.com/daily.rss",
			Title:        "The Daily",
			Link:         "https://example.com/",
			Description:  "<p>About The Daily.</p>",
			Author:       "Example Author",
			EpisodeCount: 2,
			LastEpisode:  "2025-05-05T12:00:00Z",
			Followed:     true,
		},
	}, podcasts)

	followed := do[[]podcastResponse](t, http.MethodGet, server, "/podcasts?followed=true", http.StatusOK)
	require.Len(t, followed, 1)
	require.Equal(t, "The Daily", followed[0].Title)

	technology := do[[]podcastResponse](t, http.MethodGet, server, "/podcasts?category=technology", http.StatusOK)
	require.Len(t, technology, 1)
	require.Equal(t, "Go Time", technology[0].Title)

	searched := do[[]podcastResponse](t, http.MethodGet, server, "/podcasts?q=daily", http.StatusOK)
	require.Len(t, searched, 1)
	require.Equal(t, "The Daily", searched[0].Title)

	limited := do[[]podcastResponse](t, http.MethodGet, server, "/podcasts?limit=1", http.StatusOK)
	require.Len(t, limited, 1)
	require.Equal(t, "Go Time", limited[0].Title)
}

func TestPodcastEpisodesEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, db, _ := testServer(t, ctx)

	feedURL := "https://example.com/gotime.rss"
	june := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, db.ApplyFeed(ctx, samplePodcast(feedURL, "Go Time", june)))

	episodes := do[[]episodeResponse](t, http.MethodGet, server,
		"/podcasts/episodes?feed_url="+url.QueryEscape(feedURL), http.StatusOK)
	require.Len(t, episodes, 2)
	require.Equal(t, episodeResponse{
		URI:             feedURL + "#2",
		Title:           "Go Time episode 2",
		Published:       "2025-06-02T15:00:00Z",
		DurationSeconds: 1800,
		MediaURL:        "https://cdn.example.com/episodes/2.mp3",
		MediaType:       "audio/mpeg",
		PodcastURL:      feedURL,
		PodcastTitle:    "Go Time",
	}, episodes[0])

	page := do[[]episodeResponse](t, http.MethodGet, server,
		"/podcasts/episodes?feed_url="+url.QueryEscape(feedURL)+"&limit=1&offset=1", http.StatusOK)
	require.Len(t, page, 1)
	require.Equal(t, feedURL+"#1", page[0].URI)

	missing := do[errorResponse](t, http.MethodGet, server,
		"/podcasts/episodes?feed_url="+url.QueryEscape("https://example.com/nope.rss"), http.StatusNotFound)
	require.Equal(t, "unknown podcast", missing.Error)

	invalid := do[errorResponse](t, http.MethodGet, server, "/podcasts/episodes", http.StatusBadRequest)
	require.NotEmpty(t, invalid.Error)
}

func TestEpisodesEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, db, _ := testServer(t, ctx)

	june := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	may := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/gotime.rss", "Go Time", june, "Technology")))
	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/daily.rss", "The Daily", may, "News")))
	require.NoError(t, db.Follow(ctx, "https://example.com/daily.rss"))

	// Without a category the home feed serves the followed podcasts only.
	home := do[[]episodeResponse](t, http.MethodGet, server, "/episodes", http.StatusOK)
	require.Len(t, home, 2)
	require.Equal(t, "The Daily", home[0].PodcastTitle)
	require.Equal(t, "The Daily episode 2", home[0].Title)

	technology := do[[]episodeResponse](t, http.MethodGet, server, "/episodes?category=technology", http.StatusOK)
	require.Len(t, technology, 2)
	require.Equal(t, "Go Time episode 2", technology[0].Title)

	missing := do[errorResponse](t, http.MethodGet, server, "/episodes?category=gardening", http.StatusNotFound)
	require.Equal(t, "unknown category", missing.Error)
}

func TestCategoriesEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, db, _ := testServer(t, ctx)

	june := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	may := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/gotime.rss", "Go Time", june, "Technology", "News")))
	require.NoError(t, db.ApplyFeed(ctx, samplePodcast("https://example.com/daily.rss", "The Daily", may, "news")))

	categories := do[[]categoryResponse](t, http.MethodGet, server, "/categories", http.StatusOK)
	require.Equal(t, []categoryResponse{
		{Name: "News", Podcasts: 2},
		{Name: "Technology", Podcasts: 1},
	}, categories)
}

func TestFollowEndpoints(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, db, _ := testServer(t, ctx)

	feedURL := "https://example.com/gotime.rss"
	june := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, db.ApplyFeed(ctx, samplePodcast(feedURL, "Go Time", june)))

	escaped := url.QueryEscape(feedURL)

	followed := do[followResponse](t, http.MethodPost, server, "/podcasts/follow?feed_url="+escaped, http.StatusOK)
	require.Equal(t, followResponse{FeedURL: feedURL, Followed: true}, followed)

	// Following twice is fine.
	followed = do[followResponse](t, http.MethodPost, server, "/podcasts/follow?feed_url="+escaped, http.StatusOK)
	require.True(t, followed.Followed)

	missing := do[errorResponse](t, http.MethodPost, server,
		"/podcasts/follow?feed_url="+url.QueryEscape("https://example.com/nope.rss"), http.StatusNotFound)
	require.Contains(t, missing.Error, "unknown podcast")

	toggled := do[followResponse](t, http.MethodPost, server, "/podcasts/toggle?feed_url="+escaped, http.StatusOK)
	require.False(t, toggled.Followed)

	toggled = do[followResponse](t, http.MethodPost, server, "/podcasts/toggle?feed_url="+escaped, http.StatusOK)
	require.True(t, toggled.Followed)

	unfollowed := do[followResponse](t, http.MethodPost, server, "/podcasts/unfollow?feed_url="+escaped, http.StatusOK)
	require.False(t, unfollowed.Followed)

	isFollowed, err := db.IsFollowed(ctx, feedURL)
	require.NoError(t, err)
	require.False(t, isFollowed)
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)

	document := heredoc.Doc(`
        <?xml version="1.0" encoding="UTF-8"?>
        <rss version="2.0">
            <channel>
                <title>Go Time</title>
                <link>https://changelog.com/gotime</link>
                <description>A panel about Go.</description>
                <item>
                    <title>Episode one</title>
                    <guid>urn:gotime:1</guid>
                    <pubDate>Mon, 02 Jun 2025 15:00:00 GMT</pubDate>
                    <enclosure url="https://cdn.changelog.com/gotime/1.mp3" type="audio/mpeg" length="100"/>
                </item>
            </channel>
        </rss>`)
	feedServer := testutil.ServeFeed(t, document)

	server, db, daemon := testServer(t, ctx, feedServer.URL)
	daemon.Start(ctx, true)

	refreshed := do[refreshResponse](t, http.MethodPost, server, "/refresh", http.StatusOK)
	require.Equal(t, 1, refreshed.Podcasts)
	require.Equal(t, 1, refreshed.Episodes)
	require.NotEmpty(t, refreshed.StartedAt)
	require.Len(t, refreshed.Feeds, 1)
	require.Equal(t, feedResponse{FeedURL: feedServer.URL, Status: "success", Episodes: 1}, refreshed.Feeds[0])

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, store.Stats{Podcasts: 1, Episodes: 1}, stats)

	daemon.Stop(ctx)

	stopped := do[errorResponse](t, http.MethodPost, server, "/refresh", http.StatusServiceUnavailable)
	require.Equal(t, "the refresher is stopped", stopped.Error)
}

func TestUnknownEndpoint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	server, _, _ := testServer(t, ctx)

	missing := do[errorResponse](t, http.MethodGet, server, "/nope", http.StatusNotFound)
	require.Equal(t, "unknown endpoint", missing.Error)

	request, err := http.NewRequest(http.MethodPost, server.URL+"/podcasts", nil)
	require.NoError(t, err)

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)
}

func testServer(t *testing.T, ctx context.Context, feeds ...string) (*httptest.Server, *store.Store, *refresher.Refresher) {
	path := filepath.Join(t.TempDir(), "podcastd.db")
	require.NoError(t, store.Migrate(ctx, path))

	db, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	daemon := refresher.New(db, config.RefreshConfig{
		Feeds:        feeds,
		Interval:     config.Duration(time.Hour),
		MaxStale:     config.Duration(time.Hour),
		FetchTimeout: config.Duration(5 * time.Second),
		Concurrency:  2,
	})

	server := httptest.NewUnstartedServer(New(db, daemon).router)
	server.Config.BaseContext = func(net.Listener) context.Context {
		return ctx
	}
	server.Start()
	t.Cleanup(server.Close)

	return server, db, daemon
}

func do[T any](t *testing.T, method string, server *httptest.Server, path string, expectedStatus int) T {
	t.Helper()

	request, err := http.NewRequest(method, server.URL+path, nil)
	require.NoError(t, err)

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, response.Body.Close())
	}()

	require.Equal(t, expectedStatus, response.StatusCode)
	require.Equal(t, "application/json", response.Header.Get("Content-Type"))

	var value T
	require.NoError(t, json.NewDecoder(response.Body).Decode(&value))
	return value
}

func samplePodcast(feedURL string, title string, published time.Time, categories ...string) *feed.Podcast {
	return &feed.Podcast{
		FeedURL:     feedURL,
		Title:       title,
		Link:        "https://example.com/",
		Description: "<p>About " + title + ".</p>",
		Author:      "Example Author",
		Categories:  categories,
		Episodes: []feed.Episode{
			{
				URI:       feedURL + "#2",
				Title:     title + " episode 2",
				Published: published,
				Duration:  mo.Some(30 * time.Minute),
				MediaURL:  "https://cdn.example.com/episodes/2.mp3",
				MediaType: "audio/mpeg",
			},
			{
				URI:       feedURL + "#1",
				Title:     title + " episode 1",
				Published: published.Add(-7 * 24 * time.Hour),
			},
		},
	}
}
