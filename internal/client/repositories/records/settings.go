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

// Settings have no tombstone: they are only ever overwritten.

func (r *SQLiteRepository) UpsertSetting(ctx context.Context, s *models.Setting) error {
	query := `INSERT INTO settings (key, value, user_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, s.Key, s.Value, s.UserID, toNano(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	query := `SELECT key, value, user_id, updated_at FROM settings WHERE key = ?`
	s, err := scanSetting(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SettingsUpdatedSince(ctx context.Context, since time.Time) ([]models.Setting, error) {
	query := `SELECT key, value, user_id, updated_at FROM settings WHERE updated_at > ?`
	rows, err := r.db.QueryContext(ctx, query, toNano(since))
	if err != nil {
		return nil, fmt.Errorf("failed to select settings: %w", err)
	}
	return collectSettings(rows)
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]models.Setting, error) {
	query := `SELECT key, value, user_id, updated_at FROM settings ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select settings: %w", err)
	}
	return collectSettings(rows)
}

func scanSetting(row rowScanner) (*models.Setting, error) {
	var s models.Setting
	var updated int64
	if err := row.Scan(&s.Key, &s.Value, &s.UserID, &updated); err != nil {
		return nil, err
	}
	s.UpdatedAt = fromNano(updated)
	return &s, nil
}

func collectSettings(rows *sql.Rows) ([]models.Setting, error) {
	defer rows.Close()
	var result []models.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
