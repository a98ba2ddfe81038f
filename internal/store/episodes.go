package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/mo"
)

// Episode is an episode row joined with its podcast's display fields.
type Episode struct {
	URI      string
	Title    string
	Subtitle string
	Summary  string
	Author   string

	Published time.Time
	Duration  mo.Option[time.Duration]

	MediaURL    string
	MediaType   string
	MediaLength int64

	PodcastURL      string
	PodcastTitle    string
	PodcastImageURL string
}

type EpisodeFilter struct {
	FeedURL      string
	Category     string
	FollowedOnly bool
	Limit        int
	Offset       int
}

// Episodes lists episodes newest first. The zero filter lists everything,
// which is rarely what a caller wants: filter by podcast, category or
// followed state and pass a limit.
func (s *Store) Episodes(ctx context.Context, filter EpisodeFilter) ([]Episode, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"e.uri", "e.title", "e.subtitle", "e.summary", "e.author",
		"e.published", "e.duration_seconds", "e.media_url", "e.media_type", "e.media_length",
		"p.feed_url", "p.title", "p.image_url",
	).From("episodes AS e")
	sb.Join("podcasts AS p", "p.feed_url = e.podcast_url")

	if filter.FeedURL != "" {
		sb.Where(sb.Equal("e.podcast_url", filter.FeedURL))
	}
	if filter.Category != "" {
		sb.Join("podcast_categories AS pc", "pc.podcast_url = e.podcast_url")
		sb.Join("categories AS c", "c.id = pc.category_id")
		sb.Where(sb.Equal("c.name", filter.Category))
	}
	if filter.FollowedOnly {
		sb.Join("followed_podcasts AS f", "f.podcast_url = e.podcast_url")
	}

	sb.OrderBy("e.published DESC", "e.uri")
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan an episode: %w", err)
		}
		episodes = append(episodes, episode)
	}

	return episodes, rows.Err()
}

func scanEpisode(rows *sql.Rows) (Episode, error) {
	var episode Episode
	var published int64
	var duration sql.NullInt64

	if err := rows.Scan(
		&episode.URI, &episode.Title, &episode.Subtitle, &episode.Summary, &episode.Author,
		&published, &duration, &episode.MediaURL, &episode.MediaType, &episode.MediaLength,
		&episode.PodcastURL, &episode.PodcastTitle, &episode.PodcastImageURL,
	); err != nil {
		return Episode{}, err
	}

	episode.Published = time.Unix(published, 0).UTC()
	if duration.Valid {
		episode.Duration = mo.Some(time.Duration(duration.Int64) * time.Second)
	}

	return episode, nil
}
