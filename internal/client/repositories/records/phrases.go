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

func (r *SQLiteRepository) UpsertPhrase(ctx context.Context, p *models.Phrase) error {
	query := `INSERT INTO phrases (id, news_id, text, note, user_id, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			news_id = excluded.news_id,
			text = excluded.text,
			note = excluded.note,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.NewsID, p.Text, p.Note, p.UserID, toNano(p.UpdatedAt), p.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert phrase: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error) {
	query := `SELECT id, news_id, text, note, user_id, updated_at, deleted FROM phrases WHERE id = ?`
	p, err := scanPhrase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get phrase: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) PhrasesUpdatedSince(ctx context.Context, since time.Time) ([]models.Phrase, error) {
	query := `SELECT id, news_id, text, note, user_id, updated_at, deleted FROM phrases WHERE updated_at > ?`
	rows, err := r.db.QueryContext(ctx, query, toNano(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select phrases: %w", err)
	}
	return collectPhrases(rows)
}

func (r *SQLiteRepository) ListPhrases(ctx context.Context) ([]models.Phrase, error) {
	query := `SELECT id, news_id, text, note, user_id, updated_at, deleted FROM phrases WHERE deleted = 0`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select phrases: %w", err)
	}
	return collectPhrases(rows)
}

func scanPhrase(row rowScanner) (*models.Phrase, error) {
	var p models.Phrase
	var updated int64
	if err := row.Scan(&p.ID, &p.NewsID, &p.Text, &p.Note, &p.UserID, &updated, &p.Deleted); err != nil {
		return nil, err
	}
	p.UpdatedAt = fromNano(updated)
	return &p, nil
}

func collectPhrases(rows *sql.Rows) ([]models.Phrase, error) {
	defer rows.Close()
	var result []models.Phrase
	for rows.Next() {
		p, err := scanPhrase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
