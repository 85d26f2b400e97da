// Command fixture-api serves the transactions resource from a JSON seed file,
// for running the dashboard without the real service.
package main

import (
	"net/http"
	"time"

	"gofinances/internal/api"
	"gofinances/internal/api/memory"
	"gofinances/internal/cli"
	"gofinances/internal/log"
)

func main() {
	cli.Exit(run())
}

func run() error {
	cfg, logger, err := cli.Setup(log.ComponentFixture)
	if err != nil {
		return err
	}

	store, err := memory.NewFromFile(cfg.FixtureSeedFile)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.FixturePort,
		Handler:           api.NewHandler(store, logger.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting fixture transactions service",
		"port", cfg.FixturePort,
		"seed_file", cfg.FixtureSeedFile,
		"transactions", store.Len())

	if err := cli.Serve(ctx, logger, srv, 10*time.Second); err != nil {
		logger.Error("Fixture service error", log.FieldError, err)
		return err
	}
	logger.Info("Fixture service stopped")
	return nil
}
