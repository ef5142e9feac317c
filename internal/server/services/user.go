// Package services contains server-side business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/server/auth"
	"github.com/aidaily-app/aidaily/internal/server/config"
	"github.com/aidaily-app/aidaily/internal/server/models"
	"github.com/aidaily-app/aidaily/internal/server/repositories/users"
)

// AuthResult is returned to a freshly registered or logged-in client.
type AuthResult struct {
	AccessToken string
	UserID      string
}

// UserService handles registration and login. Passwords are stored as bcrypt
// hashes; sessions are stateless HS256 JWTs.
type UserService struct {
	users                 users.Repository
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		users:                 repo,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account and logs it in. A duplicate email yields
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, common.ErrInternal
	}

	return s.mintToken(user.ID)
}

// Login verifies the credentials and mints a token. An unknown email and a
// wrong password both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, password); err != nil {
		return nil, common.ErrUnauthorized
	}

	return s.mintToken(user.ID)
}

func (s *UserService) mintToken(userID string) (*AuthResult, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &AuthResult{AccessToken: token, UserID: userID}, nil
}
