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

func (r *PostgresRepository) GetSetting(ctx context.Context, userID, key string) (*models.Setting, error) {
	query :=
		`SELECT user_id, key, value, updated_at
		 FROM settings WHERE user_id = $1 AND key = $2
		 `

	s := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(&s.UserID, &s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *PostgresRepository) UpsertSetting(ctx context.Context, s *models.Setting) error {
	query :=
		`INSERT INTO settings (user_id, key, value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query, s.UserID, s.Key, s.Value, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SettingsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Setting, error) {
	query :=
		`SELECT user_id, key, value, updated_at
		 FROM settings WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.UserID, &s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.UpdatedAt = s.UpdatedAt.UTC()
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
