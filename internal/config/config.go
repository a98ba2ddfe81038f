// Package config reads the daemon configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"podcastd/pkg/filter"
	"podcastd/pkg/url"
)

// Duration makes time.Duration readable from TOML strings like "8h".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Listen  ListenConfig  `toml:"listen"`
	Store   StoreConfig   `toml:"store"`
	Refresh RefreshConfig `toml:"refresh"`
}

type ListenConfig struct {
	API     string `toml:"api"`
	Metrics string `toml:"metrics"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type RefreshConfig struct {
	Feeds             []string `toml:"feeds"`
	Interval          Duration `toml:"interval"`
	MaxStale          Duration `toml:"max_stale"`
	FetchTimeout      Duration `toml:"fetch_timeout"`
	FetchRetries      uint64   `toml:"fetch_retries"`
	Concurrency       int      `toml:"concurrency"`
	BlockedCategories []string `toml:"blocked_categories"`
}

// FeedURLs returns the configured feed list as parsed URLs. Safe to call
// only on validated configs.
func (c *RefreshConfig) FeedURLs() []*url.URL {
	return lo.Map(c.Feeds, func(feed string, _ int) *url.URL {
		return url.MustURL(feed)
	})
}

func (c *RefreshConfig) Blocklist() filter.Blocklist {
	return filter.Blocklist(c.BlockedCategories)
}

var defaultFeeds = []string{
	"https://rss.art19.com/the-daily",
	"https://feeds.thisamericanlife.org/talpodcast",
	"https://feeds.npr.org/510289/podcast.xml",
	"https://feeds.npr.org/510318/podcast.xml",
	"https://feeds.99percentinvisible.org/99percentinvisible",
}

// Default returns the configuration the daemon runs with when no file is
// given: a small list of well-known feeds and localhost listeners.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			API:     "localhost:8080",
			Metrics: "localhost:9101",
		},
		Store: StoreConfig{
			Path: "podcastd.db",
		},
		Refresh: RefreshConfig{
			Feeds:        defaultFeeds,
			Interval:     Duration(time.Hour),
			MaxStale:     Duration(8 * time.Hour),
			FetchTimeout: Duration(time.Minute),
			FetchRetries: 2,
			Concurrency:  4,
		},
	}
}

// Load reads the configuration from path, filling everything that's not set
// with defaults. A missing file is not an error: the daemon is expected to
// run out of the box on the default feed list.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read the configuration file: %w", err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse the configuration file: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("the configuration is invalid: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Listen.API == "" || c.Listen.Metrics == "" {
		return errors.New("listen addresses must not be empty")
	}

	if c.Store.Path == "" {
		return errors.New("the database path must not be empty")
	}

	refresh := &c.Refresh

	if refresh.Interval <= 0 {
		return errors.New("the refresh interval must be positive")
	}
	if refresh.MaxStale < 0 {
		return errors.New("the max stale time must not be negative")
	}
	if refresh.FetchTimeout <= 0 {
		return errors.New("the fetch timeout must be positive")
	}
	if refresh.Concurrency < 1 {
		return errors.New("the fetch concurrency must be positive")
	}

	if len(refresh.Feeds) == 0 {
		return errors.New("the feed list is empty")
	}
	refresh.Feeds = lo.Uniq(refresh.Feeds)

	for _, feed := range refresh.Feeds {
		if _, err := url.Parse(feed); err != nil {
			return err
		}
	}

	return nil
}
