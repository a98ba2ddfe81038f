package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/mo"
)

type CategorySummary struct {
	Name     string
	Podcasts int
}

// Categories lists categories sorted by how many podcasts carry them.
func (s *Store) Categories(ctx context.Context, limit int) ([]CategorySummary, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("c.name", "COUNT(pc.podcast_url)").From("categories AS c")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "podcast_categories AS pc", "pc.category_id = c.id")
	sb.GroupBy("c.id")
	sb.OrderBy("COUNT(pc.podcast_url) DESC", "c.name")
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []CategorySummary
	for rows.Next() {
		var category CategorySummary
		if err := rows.Scan(&category.Name, &category.Podcasts); err != nil {
			return nil, fmt.Errorf("failed to scan a category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// Category looks up a single category by name, case-insensitively.
func (s *Store) Category(ctx context.Context, name string) (mo.Option[CategorySummary], error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("c.name", "COUNT(pc.podcast_url)").From("categories AS c")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "podcast_categories AS pc", "pc.category_id = c.id")
	sb.Where(sb.Equal("c.name", name))
	sb.GroupBy("c.id")

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var category CategorySummary
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&category.Name, &category.Podcasts)
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[CategorySummary](), nil
	} else if err != nil {
		return mo.None[CategorySummary](), fmt.Errorf("failed to query a category: %w", err)
	}

	return mo.Some(category), nil
}
