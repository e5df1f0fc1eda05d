package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safar/sweet-shop/internal/api"
	"github.com/safar/sweet-shop/internal/config"
	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/metrics"
	"github.com/safar/sweet-shop/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := setupLogger(cfg.Env)

	if cfg.Auth.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	logger.Info("Starting sweet shop",
		slog.String("env", cfg.Env),
		slog.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	appMetrics, meterProvider, err := metrics.Init(ctx, &cfg.Telemetry)
	if err != nil {
		logger.Error("Failed to initialize metrics", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down meter provider", slog.Any("error", err))
		}
	}()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	server := api.New(cfg, logger, store.New(db), appMetrics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go server.MustStart()

	<-sigChan
	logger.Info("Got signal to shut down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop server", slog.Any("error", err))
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "dev":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
