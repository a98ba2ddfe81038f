package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"podcastd/pkg/feed"
)

const upsertPodcastQuery = `
	INSERT INTO podcasts (feed_url, title, link, description, author, image_url, copyright, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (feed_url) DO UPDATE SET
		title = excluded.title,
		link = excluded.link,
		description = excluded.description,
		author = excluded.author,
		image_url = excluded.image_url,
		copyright = excluded.copyright,
		updated_at = excluded.updated_at
`

const upsertEpisodeQuery = `
	INSERT INTO episodes (
		uri, podcast_url, title, subtitle, summary, author,
		published, duration_seconds, media_url, media_type, media_length
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (uri) DO UPDATE SET
		podcast_url = excluded.podcast_url,
		title = excluded.title,
		subtitle = excluded.subtitle,
		summary = excluded.summary,
		author = excluded.author,
		published = excluded.published,
		duration_seconds = excluded.duration_seconds,
		media_url = excluded.media_url,
		media_type = excluded.media_type,
		media_length = excluded.media_length
`

// ApplyFeed stores one parsed feed. The podcast row, its episodes and its
// category links are upserted in a single transaction, so a feed is either
// fully applied or not at all, and re-applying the same feed is a no-op.
// Follow state is keyed by feed URL and survives any number of refreshes.
func (s *Store) ApplyFeed(ctx context.Context, podcast *feed.Podcast) error {
	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertPodcastQuery,
			podcast.FeedURL, podcast.Title, podcast.Link, podcast.Description,
			podcast.Author, podcast.ImageURL, podcast.Copyright, time.Now().Unix(),
		); err != nil {
			return fmt.Errorf("failed to store the podcast: %w", err)
		}

		upsertEpisode, err := tx.PrepareContext(ctx, upsertEpisodeQuery)
		if err != nil {
			return err
		}
		defer func() {
			_ = upsertEpisode.Close()
		}()

		for _, episode := range podcast.Episodes {
			var duration sql.NullInt64
			if value, ok := episode.Duration.Get(); ok {
				duration = sql.NullInt64{Int64: int64(value / time.Second), Valid: true}
			}

			if _, err := upsertEpisode.ExecContext(ctx,
				episode.URI, podcast.FeedURL, episode.Title, episode.Subtitle,
				episode.Summary, episode.Author, episode.Published.Unix(), duration,
				episode.MediaURL, episode.MediaType, episode.MediaLength,
			); err != nil {
				return fmt.Errorf("failed to store episode %s: %w", episode.URI, err)
			}
		}

		for _, category := range podcast.Categories {
			if err := linkCategory(ctx, tx, podcast.FeedURL, category); err != nil {
				return fmt.Errorf("failed to store category %q: %w", category, err)
			}
		}

		return nil
	})
}

// linkCategory joins category records by name: the first writer of a name
// fixes its casing, everyone else attaches to the existing row.
func linkCategory(ctx context.Context, tx *sql.Tx, feedURL string, name string) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name,
	); err != nil {
		return err
	}

	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", name).Scan(&id); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO podcast_categories (podcast_url, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		feedURL, id)
	return err
}
