// Package main is the entry point of the in-memory fixture backend.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/fixture"
	"github.com/telecomplus/contratos/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting fixture API", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := fixture.NewServer(cfg.Fixture, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("fixture API stopped with error", sl.Err(err))
		os.Exit(1)
	}
}
