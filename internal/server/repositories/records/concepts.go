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

func (r *PostgresRepository) GetConceptByID(ctx context.Context, id string) (*models.Concept, error) {
	query :=
		`SELECT id, user_id, news_id, term, definition, updated_at, deleted
		 FROM concepts WHERE id = $1
		 `

	c := &models.Concept{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.NewsID, &c.Term, &c.Definition, &c.UpdatedAt, &c.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (r *PostgresRepository) UpsertConcept(ctx context.Context, c *models.Concept) error {
	query :=
		`INSERT INTO concepts (id, user_id, news_id, term, definition, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   news_id = excluded.news_id,
		   term = excluded.term,
		   definition = excluded.definition,
		   updated_at = excluded.updated_at,
		   deleted = excluded.deleted
		 `

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.NewsID, c.Term, c.Definition, c.UpdatedAt.UTC(), c.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ConceptsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Concept, error) {
	query :=
		`SELECT id, user_id, news_id, term, definition, updated_at, deleted
		 FROM concepts WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Concept
	for rows.Next() {
		var c models.Concept
		if err := rows.Scan(&c.ID, &c.UserID, &c.NewsID, &c.Term, &c.Definition, &c.UpdatedAt, &c.Deleted); err != nil {
			return nil, err
		}
		c.UpdatedAt = c.UpdatedAt.UTC()
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
