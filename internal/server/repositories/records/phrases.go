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

func (r *PostgresRepository) GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error) {
	query :=
		`SELECT id, user_id, news_id, text, note, updated_at, deleted
		 FROM phrases WHERE id = $1
		 `

	p := &models.Phrase{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.NewsID, &p.Text, &p.Note, &p.UpdatedAt, &p.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *PostgresRepository) UpsertPhrase(ctx context.Context, p *models.Phrase) error {
	query :=
		`INSERT INTO phrases (id, user_id, news_id, text, note, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   news_id = excluded.news_id,
		   text = excluded.text,
		   note = excluded.note,
		   updated_at = excluded.updated_at,
		   deleted = excluded.deleted
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.NewsID, p.Text, p.Note, p.UpdatedAt.UTC(), p.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PhrasesUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Phrase, error) {
	query :=
		`SELECT id, user_id, news_id, text, note, updated_at, deleted
		 FROM phrases WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Phrase
	for rows.Next() {
		var p models.Phrase
		if err := rows.Scan(&p.ID, &p.UserID, &p.NewsID, &p.Text, &p.Note, &p.UpdatedAt, &p.Deleted); err != nil {
			return nil, err
		}
		p.UpdatedAt = p.UpdatedAt.UTC()
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
