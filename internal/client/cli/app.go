// Package cli implements the interactive AI Daily client: a small REPL over
// the local knowledge base and the sync engine.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/aidaily-app/aidaily/internal/client/client"
	"github.com/aidaily-app/aidaily/internal/client/config"
	"github.com/aidaily-app/aidaily/internal/client/repositories/metadata"
	"github.com/aidaily-app/aidaily/internal/client/repositories/records"
	"github.com/aidaily-app/aidaily/internal/client/repositories/sources"
	"github.com/aidaily-app/aidaily/internal/client/services"
	"github.com/aidaily-app/aidaily/internal/logging"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	auth    services.AuthService
	library *services.LibraryService
	sync    *services.SyncService
	sources sources.Repository
	logger  logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	recordsRepo := records.NewSQLiteRepository(db)
	metadataRepo := metadata.NewSQLiteRepository(db)
	sourcesRepo := sources.NewSQLiteRepository(db)

	api := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	library := services.NewLibraryService(recordsRepo)
	if err := library.SeedDefaults(ctx); err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		db:      db,
		auth:    services.NewAuthService(api, metadataRepo),
		library: library,
		sync:    services.NewSyncService(api, recordsRepo, metadataRepo, logger),
		sources: sourcesRepo,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	runREPL(ctx, a, a.statusLine, a.reader)
}

func (a *App) statusLine(ctx context.Context) string {
	st, err := a.sync.Status(ctx)
	if err != nil || !st.LoggedIn {
		return ""
	}
	return "(online)"
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	st, err := a.sync.Status(ctx)
	return err == nil && st.LoggedIn
}
