// Command purge archives and removes tombstoned records past the retention
// window. Meant to run from cron, not as a daemon.
package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/server/config"
	"github.com/aidaily-app/aidaily/internal/server/maintenance"
	"github.com/aidaily-app/aidaily/internal/server/repositories/records"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	purger, err := maintenance.NewPurger(cfg, records.NewPostgresRepository(db), logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := purger.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
