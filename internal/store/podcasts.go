package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/mo"
)

// ErrUnknownPodcast is returned for operations on a podcast the store has
// never seen.
var ErrUnknownPodcast = errors.New("unknown podcast")

type PodcastSummary struct {
	FeedURL      string
	Title        string
	Link         string
	Description  string
	Author       string
	ImageURL     string
	EpisodeCount int
	LastEpisode  mo.Option[time.Time]
	Followed     bool
}

type PodcastFilter struct {
	FeedURL      string
	Category     string
	Search       string
	FollowedOnly bool
	Limit        int
}

// Podcasts lists podcast summaries sorted by their latest episode, newest
// first. The zero filter lists everything.
func (s *Store) Podcasts(ctx context.Context, filter PodcastFilter) ([]PodcastSummary, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"p.feed_url", "p.title", "p.link", "p.description", "p.author", "p.image_url",
		"COUNT(e.uri)", "MAX(e.published)",
		"EXISTS (SELECT 1 FROM followed_podcasts f WHERE f.podcast_url = p.feed_url)",
	).From("podcasts AS p")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "episodes AS e", "e.podcast_url = p.feed_url")

	if filter.FeedURL != "" {
		sb.Where(sb.Equal("p.feed_url", filter.FeedURL))
	}
	if filter.FollowedOnly {
		sb.Join("followed_podcasts AS fo", "fo.podcast_url = p.feed_url")
	}
	if filter.Category != "" {
		sb.Join("podcast_categories AS pc", "pc.podcast_url = p.feed_url")
		sb.Join("categories AS c", "c.id = pc.category_id")
		sb.Where(sb.Equal("c.name", filter.Category))
	}
	if filter.Search != "" {
		sb.Where(sb.Like("p.title", "%"+filter.Search+"%"))
	}

	sb.GroupBy("p.feed_url")
	sb.OrderBy("MAX(e.published) DESC", "p.title")
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query podcasts: %w", err)
	}
	defer rows.Close()

	var podcasts []PodcastSummary
	for rows.Next() {
		summary, err := scanPodcastSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan a podcast: %w", err)
		}
		podcasts = append(podcasts, summary)
	}

	return podcasts, rows.Err()
}

// Podcast returns the summary of a single podcast, or None if the store
// doesn't know it.
func (s *Store) Podcast(ctx context.Context, feedURL string) (mo.Option[PodcastSummary], error) {
	podcasts, err := s.Podcasts(ctx, PodcastFilter{FeedURL: feedURL, Limit: 1})
	if err != nil || len(podcasts) == 0 {
		return mo.None[PodcastSummary](), err
	}
	return mo.Some(podcasts[0]), nil
}

func scanPodcastSummary(rows *sql.Rows) (PodcastSummary, error) {
	var summary PodcastSummary
	var lastEpisode sql.NullInt64

	if err := rows.Scan(
		&summary.FeedURL, &summary.Title, &summary.Link, &summary.Description,
		&summary.Author, &summary.ImageURL, &summary.EpisodeCount, &lastEpisode, &summary.Followed,
	); err != nil {
		return PodcastSummary{}, err
	}

	if lastEpisode.Valid {
		summary.LastEpisode = mo.Some(time.Unix(lastEpisode.Int64, 0).UTC())
	}

	return summary, nil
}
