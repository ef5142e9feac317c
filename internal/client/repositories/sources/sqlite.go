// Package sources stores the news source definitions the fetcher reads from.
// Sources are device-local configuration and are never synced.
package sources

import (
	"context"
	"fmt"

	"github.com/aidaily-app/aidaily/internal/dbx"
)

// Source is a configured news feed.
type Source struct {
	ID       string
	Name     string
	URL      string
	RSSURL   string
	Category string
	Enabled  bool
}

type Repository interface {
	Add(ctx context.Context, s *Source) error
	List(ctx context.Context) ([]Source, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, s *Source) error {
	query := `INSERT INTO sources (id, name, url, rss_url, category, enabled) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.URL, s.RSSURL, s.Category, s.Enabled)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, url, rss_url, category, enabled FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select sources: %w", err)
	}
	defer rows.Close()

	var result []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Name, &s.URL, &s.RSSURL, &s.Category, &s.Enabled); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sources SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("wrong rows affected count: %d", n)
	}
	return nil
}
