package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aidaily-app/aidaily/internal/models"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// TombstonesBefore returns every soft-deleted record, across all users, whose
// updated_at is older than cutoff. Settings never carry tombstones and are
// not included. The result feeds the purge tool's archive step.
func (r *PostgresRepository) TombstonesBefore(ctx context.Context, cutoff time.Time) (*syncx.ChangeSet, error) {
	cs := &syncx.ChangeSet{}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, url, summary, content_raw, source, published, starred, updated_at, deleted
		 FROM news WHERE deleted AND updated_at < $1`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
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
		cs.News = append(cs.News, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, news_id, term, definition, updated_at, deleted
		 FROM concepts WHERE deleted AND updated_at < $1`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var c models.Concept
		if err := crows.Scan(&c.ID, &c.UserID, &c.NewsID, &c.Term, &c.Definition, &c.UpdatedAt, &c.Deleted); err != nil {
			return nil, err
		}
		c.UpdatedAt = c.UpdatedAt.UTC()
		cs.Concepts = append(cs.Concepts, c)
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, news_id, text, note, updated_at, deleted
		 FROM phrases WHERE deleted AND updated_at < $1`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p models.Phrase
		if err := prows.Scan(&p.ID, &p.UserID, &p.NewsID, &p.Text, &p.Note, &p.UpdatedAt, &p.Deleted); err != nil {
			return nil, err
		}
		p.UpdatedAt = p.UpdatedAt.UTC()
		cs.Phrases = append(cs.Phrases, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	return cs, nil
}

// DeleteTombstonesBefore physically removes tombstones older than cutoff.
// Concepts and phrases go first so the news rows they reference outlive them
// within the same call.
func (r *PostgresRepository) DeleteTombstonesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"concepts", "phrases", "news"} {
		res, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE deleted AND updated_at < $1`, table), cutoff.UTC())
		if err != nil {
			return total, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
