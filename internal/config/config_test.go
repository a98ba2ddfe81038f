package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	require.Equal(t, Default(), config)
	require.NotEmpty(t, config.Refresh.Feeds)
	require.Equal(t, 8*time.Hour, config.Refresh.MaxStale.Value())
	require.Len(t, config.Refresh.FeedURLs(), len(config.Refresh.Feeds))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, heredoc.Doc(`
		[store]
		path = "/var/lib/podcastd/podcastd.db"

		[refresh]
		feeds = [
			"https://example.org/feed.xml",
			"https://example.org/feed.xml",
			"https://example.org/other.xml",
		]
		interval = "30m"
		max_stale = "2h"
		blocked_categories = ["Politics"]
	`))

	config, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/var/lib/podcastd/podcastd.db", config.Store.Path)
	require.Equal(t, 30*time.Minute, config.Refresh.Interval.Value())
	require.Equal(t, 2*time.Hour, config.Refresh.MaxStale.Value())
	require.True(t, config.Refresh.Blocklist().IsBlocked("politics"))

	// Duplicates collapse, defaults survive for everything not set.
	require.Equal(t, []string{"https://example.org/feed.xml", "https://example.org/other.xml"}, config.Refresh.Feeds)
	require.Equal(t, "localhost:8080", config.Listen.API)
	require.Equal(t, time.Minute, config.Refresh.FetchTimeout.Value())
}

func TestLoadMissing(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "no-such-file.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), config)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, `feeds = [`))
	require.ErrorContains(t, err, "failed to parse the configuration file")

	_, err = Load(writeConfig(t, heredoc.Doc(`
		[refresh]
		feeds = ["ftp://example.org/feed.xml"]
	`)))
	require.ErrorContains(t, err, "unsupported scheme")

	_, err = Load(writeConfig(t, heredoc.Doc(`
		[refresh]
		interval = "0s"
	`)))
	require.ErrorContains(t, err, "refresh interval must be positive")

	_, err = Load(writeConfig(t, heredoc.Doc(`
		[refresh]
		feeds = []
	`)))
	require.ErrorContains(t, err, "the feed list is empty")
}

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "podcastd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
