package main

import (
	"fmt"
	"time"

	"gofinances/internal/backend"
	"gofinances/internal/cli"
	"gofinances/internal/core"
	apphttp "gofinances/internal/http"
	"gofinances/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.Exit(run())
}

func run() error {
	cfg, logger, err := cli.Setup(log.ComponentApp)
	if err != nil {
		return err
	}

	fcfg, err := cfg.FormatterConfig()
	if err != nil {
		return err
	}
	formatter, err := core.NewFormatter(fcfg)
	if err != nil {
		return fmt.Errorf("build formatter: %w", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	src, err := backend.NewFactory(logger.Logger).CreateSource(ctx, bcfg)
	if err != nil {
		return err
	}
	if src.Cleanup != nil {
		defer func() {
			if err := src.Cleanup(); err != nil {
				logger.Error("Data source cleanup failed", log.FieldError, err)
			}
		}()
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Reader:             src.Source,
		Pinger:             src.Source,
		Formatter:          formatter,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.APITimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting dashboard server",
		"port", cfg.Port,
		log.FieldOperation, log.OpStartup,
		"data_source", cfg.DataSource,
		log.FieldBaseURL, cfg.TransactionsAPIURL)

	if err := cli.Serve(ctx, logger, srv, shutdownTimeout); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
