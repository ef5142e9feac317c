// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/aidaily-app/aidaily/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
