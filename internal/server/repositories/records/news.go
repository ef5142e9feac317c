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

func (r *PostgresRepository) GetNewsByID(ctx context.Context, id string) (*models.NewsItem, error) {
	query :=
		`SELECT id, user_id, title, url, summary, content_raw, source, published, starred, updated_at, deleted
		 FROM news WHERE id = $1
		 `

	item := &models.NewsItem{}
	var published sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.UserID, &item.Title, &item.URL, &item.Summary, &item.ContentRaw,
		&item.Source, &published, &item.Starred, &item.UpdatedAt, &item.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	item.Published = fromNullTime(published)
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func (r *PostgresRepository) UpsertNews(ctx context.Context, item *models.NewsItem) error {
	query :=
		`INSERT INTO news (id, user_id, title, url, summary, content_raw, source, published, starred, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   url = excluded.url,
		   summary = excluded.summary,
		   content_raw = excluded.content_raw,
		   source = excluded.source,
		   published = excluded.published,
		   starred = excluded.starred,
		   updated_at = excluded.updated_at,
		   deleted = excluded.deleted
		 `

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Title, item.URL, item.Summary, item.ContentRaw,
		item.Source, toNullTime(item.Published), item.Starred, item.UpdatedAt.UTC(), item.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) NewsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.NewsItem, error) {
	query :=
		`SELECT id, user_id, title, url, summary, content_raw, source, published, starred, updated_at, deleted
		 FROM news WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var published sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.URL, &item.Summary, &item.ContentRaw,
			&item.Source, &published, &item.Starred, &item.UpdatedAt, &item.Deleted); err != nil {
			return nil, err
		}
		item.Published = fromNullTime(published)
		item.UpdatedAt = item.UpdatedAt.UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) NewsExists(ctx context.Context, userID, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE id = $1 AND user_id = $2)`, id, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
