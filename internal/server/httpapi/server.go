// Package httpapi exposes the sync protocol over HTTP+JSON.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/server/services"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// userService is the part of services.UserService the handlers need.
type userService interface {
	Register(ctx context.Context, email string, password []byte) (*services.AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*services.AuthResult, error)
}

// syncService is the part of services.SyncService the handlers need.
type syncService interface {
	Upload(ctx context.Context, userID string, cs *syncx.ChangeSet) (*syncx.UploadResponse, error)
	Download(ctx context.Context, userID string, since time.Time) (*syncx.DownloadResponse, error)
}

type Server struct {
	addr      string
	app       *fiber.App
	users     userService
	sync      syncService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(addr string, users userService, sync syncService, secretKey string, logger logging.Logger) *Server {
	s := &Server{
		addr:      addr,
		users:     users,
		sync:      sync,
		jwtSecret: []byte(secretKey),
		logger:    logger.With("module", "httpapi"),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Get("/health", s.handleHealth)
	app.Post("/auth/register", s.handleRegister)
	app.Post("/auth/login", s.handleLogin)

	syncGroup := app.Group("/sync", s.requireAuth)
	syncGroup.Post("/upload", s.handleUpload)
	syncGroup.Get("/download", s.handleDownload)

	s.app = app
	return s
}

// App exposes the fiber app for tests (app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}
