// Command migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/shortlinks/internal/app"
	"github.com/sundayezeilo/shortlinks/internal/config"
	"github.com/sundayezeilo/shortlinks/internal/db/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.LoadEnv()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	logger := app.SetupLogger(cfg.App.LogLevel)

	pool, err := app.ConnectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := migrations.Apply(ctx, pool, logger)
	if err != nil {
		return err
	}

	logger.Info("migrations complete", "applied", len(applied))
	return nil
}
