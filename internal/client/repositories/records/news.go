package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/models"
)

// UpsertNews inserts or replaces a news item by id, including sync fields.
func (r *SQLiteRepository) UpsertNews(ctx context.Context, item *models.NewsItem) error {
	query := `INSERT INTO news (id, title, url, summary, content_raw, source, published, starred, user_id, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			summary = excluded.summary,
			content_raw = excluded.content_raw,
			source = excluded.source,
			published = excluded.published,
			starred = excluded.starred,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Title, item.URL, item.Summary, item.ContentRaw, item.Source,
		toNano(item.Published), item.Starred, item.UserID, toNano(item.UpdatedAt), item.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert news item: %w", err)
	}
	return nil
}

// GetNewsByID returns a news item by id, tombstones included.
func (r *SQLiteRepository) GetNewsByID(ctx context.Context, id string) (*models.NewsItem, error) {
	query := `SELECT id, title, url, summary, content_raw, source, published, starred, user_id, updated_at, deleted
		FROM news WHERE id = ?`
	item, err := scanNews(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get news item: %w", err)
	}
	return item, nil
}

// NewsUpdatedSince returns every news item with updated_at strictly greater
// than since, tombstones included.
func (r *SQLiteRepository) NewsUpdatedSince(ctx context.Context, since time.Time) ([]models.NewsItem, error) {
	query := `SELECT id, title, url, summary, content_raw, source, published, starred, user_id, updated_at, deleted
		FROM news WHERE updated_at > ?`
	rows, err := r.db.QueryContext(ctx, query, toNano(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select news items: %w", err)
	}
	return collectNews(rows)
}

// ListNews returns live news items, newest first.
func (r *SQLiteRepository) ListNews(ctx context.Context, starredOnly bool) ([]models.NewsItem, error) {
	query := `SELECT id, title, url, summary, content_raw, source, published, starred, user_id, updated_at, deleted
		FROM news WHERE deleted = 0`
	if starredOnly {
		query += ` AND starred = 1`
	}
	query += ` ORDER BY published DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select news items: %w", err)
	}
	return collectNews(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNews(row rowScanner) (*models.NewsItem, error) {
	var item models.NewsItem
	var published, updated int64
	if err := row.Scan(&item.ID, &item.Title, &item.URL, &item.Summary, &item.ContentRaw,
		&item.Source, &published, &item.Starred, &item.UserID, &updated, &item.Deleted); err != nil {
		return nil, err
	}
	item.Published = fromNano(published)
	item.UpdatedAt = fromNano(updated)
	return &item, nil
}

func collectNews(rows *sql.Rows) ([]models.NewsItem, error) {
	defer rows.Close()
	var result []models.NewsItem
	for rows.Next() {
		item, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
