// Package store persists podcasts, episodes and categories in a local
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open connects to the database at path, creating the file if needed. The
// pool is limited to a single connection: SQLite allows one writer at a
// time, and WAL mode keeps writes from holding readers up for long.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA cache_size = -32000;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTransaction(ctx context.Context, apply func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin a transaction: %w", err)
	}

	if err := apply(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			logging.L(ctx).Errorf("Failed to rollback a transaction: %s.", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit a transaction: %w", err)
	}

	return nil
}

// IsEmpty reports whether the store has seen no podcasts yet.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM podcasts").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count podcasts: %w", err)
	}
	return count == 0, nil
}

type Stats struct {
	Podcasts   int
	Episodes   int
	Categories int
	Followed   int
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats

	for _, count := range []struct {
		table string
		value *int
	}{
		{"podcasts", &stats.Podcasts},
		{"episodes", &stats.Episodes},
		{"categories", &stats.Categories},
		{"followed_podcasts", &stats.Followed},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+count.table).Scan(count.value); err != nil {
			return Stats{}, fmt.Errorf("failed to count %s: %w", count.table, err)
		}
	}

	return stats, nil
}
