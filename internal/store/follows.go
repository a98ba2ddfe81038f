package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Follow marks a known podcast as followed. Following it twice is a no-op.
func (s *Store) Follow(ctx context.Context, feedURL string) error {
	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkPodcast(ctx, tx, feedURL); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO followed_podcasts (podcast_url, followed_at) VALUES (?, ?)
			ON CONFLICT (podcast_url) DO NOTHING`,
			feedURL, time.Now().Unix())
		return err
	})
}

func (s *Store) Unfollow(ctx context.Context, feedURL string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM followed_podcasts WHERE podcast_url = ?", feedURL)
	return err
}

// ToggleFollowed flips the followed state of a known podcast and returns the
// new state.
func (s *Store) ToggleFollowed(ctx context.Context, feedURL string) (followed bool, retErr error) {
	retErr = s.inTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkPodcast(ctx, tx, feedURL); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM followed_podcasts WHERE podcast_url = ?)", feedURL,
		).Scan(&exists); err != nil {
			return err
		}

		if exists {
			_, err := tx.ExecContext(ctx, "DELETE FROM followed_podcasts WHERE podcast_url = ?", feedURL)
			return err
		}

		followed = true
		_, err := tx.ExecContext(ctx,
			"INSERT INTO followed_podcasts (podcast_url, followed_at) VALUES (?, ?)",
			feedURL, time.Now().Unix())
		return err
	})
	return
}

func (s *Store) IsFollowed(ctx context.Context, feedURL string) (bool, error) {
	var followed bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM followed_podcasts WHERE podcast_url = ?)", feedURL,
	).Scan(&followed)
	return followed, err
}

func checkPodcast(ctx context.Context, tx *sql.Tx, feedURL string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM podcasts WHERE feed_url = ?)", feedURL,
	).Scan(&exists); err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPodcast, feedURL)
	}

	return nil
}
