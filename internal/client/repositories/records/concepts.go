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

func (r *SQLiteRepository) UpsertConcept(ctx context.Context, c *models.Concept) error {
	query := `INSERT INTO concepts (id, news_id, term, definition, user_id, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			news_id = excluded.news_id,
			term = excluded.term,
			definition = excluded.definition,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.NewsID, c.Term, c.Definition, c.UserID, toNano(c.UpdatedAt), c.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert concept: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetConceptByID(ctx context.Context, id string) (*models.Concept, error) {
	query := `SELECT id, news_id, term, definition, user_id, updated_at, deleted FROM concepts WHERE id = ?`
	c, err := scanConcept(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ConceptsUpdatedSince(ctx context.Context, since time.Time) ([]models.Concept, error) {
	query := `SELECT id, news_id, term, definition, user_id, updated_at, deleted FROM concepts WHERE updated_at > ?`
	rows, err := r.db.QueryContext(ctx, query, toNano(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select concepts: %w", err)
	}
	return collectConcepts(rows)
}

func (r *SQLiteRepository) ListConcepts(ctx context.Context) ([]models.Concept, error) {
	query := `SELECT id, news_id, term, definition, user_id, updated_at, deleted FROM concepts WHERE deleted = 0 ORDER BY term`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select concepts: %w", err)
	}
	return collectConcepts(rows)
}

func scanConcept(row rowScanner) (*models.Concept, error) {
	var c models.Concept
	var updated int64
	if err := row.Scan(&c.ID, &c.NewsID, &c.Term, &c.Definition, &c.UserID, &updated, &c.Deleted); err != nil {
		return nil, err
	}
	c.UpdatedAt = fromNano(updated)
	return &c, nil
}

func collectConcepts(rows *sql.Rows) ([]models.Concept, error) {
	defer rows.Close()
	var result []models.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
