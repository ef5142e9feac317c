package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/aidaily-app/aidaily/internal/buildinfo"
	"github.com/aidaily-app/aidaily/internal/client/cli"
	"github.com/aidaily-app/aidaily/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
