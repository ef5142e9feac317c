// Package client implements the HTTP API client the sync engine talks
// through. The wire protocol is JSON: POST /sync/upload with a ChangeSet
// body and GET /sync/download?since=<timestamp> returning the server's
// changes plus its current clock.
package client

import (
	"context"
	"time"

	"github.com/aidaily-app/aidaily/internal/syncx"
)

// Session identifies an authenticated user: an opaque bearer token plus the
// user id it was issued for.
type Session struct {
	AccessToken string
	UserID      string
}

// Client is the narrow surface the client services need from the server.
type Client interface {
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Ping(ctx context.Context) error
	Upload(ctx context.Context, token string, cs *syncx.ChangeSet) (*syncx.UploadResponse, error)
	Download(ctx context.Context, token string, since time.Time) (*syncx.DownloadResponse, error)
}
