package services

import (
	"context"
	"fmt"

	"github.com/aidaily-app/aidaily/internal/client/client"
	"github.com/aidaily-app/aidaily/internal/client/repositories/metadata"
)

// AuthService manages the client's session: register or log in against the
// server and persist the bearer token locally, or clear it on logout.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	UserID(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	api      client.Client
	metadata metadata.Repository
}

func NewAuthService(api client.Client, m metadata.Repository) AuthService {
	return &authService{api: api, metadata: m}
}

func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	session, err := a.api.Register(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("registration error: %w", err)
	}
	return a.saveSession(ctx, session)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	session, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return a.saveSession(ctx, session)
}

// Logout clears the session and the watermark: records pulled down for this
// account stay in the local store, but the next login starts a full round.
func (a *authService) Logout(ctx context.Context) error {
	return a.metadata.Clear(ctx)
}

func (a *authService) UserID(ctx context.Context) (string, error) {
	b, err := a.metadata.Get(ctx, metadata.KeyUserID)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

func (a *authService) saveSession(ctx context.Context, s *client.Session) error {
	if err := a.metadata.Set(ctx, metadata.KeyAuthToken, []byte(s.AccessToken)); err != nil {
		return err
	}
	if err := a.metadata.Set(ctx, metadata.KeyUserID, []byte(s.UserID)); err != nil {
		return err
	}
	return nil
}
