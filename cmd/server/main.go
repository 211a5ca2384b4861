package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdslabs/apiconsole/internal/adapter"
	"github.com/tdslabs/apiconsole/internal/api"
	"github.com/tdslabs/apiconsole/internal/backend"
	"github.com/tdslabs/apiconsole/internal/config"
	"github.com/tdslabs/apiconsole/internal/endpoint"
	"github.com/tdslabs/apiconsole/internal/federated"
	"github.com/tdslabs/apiconsole/internal/orgcode"
	"github.com/tdslabs/apiconsole/internal/project"
	"github.com/tdslabs/apiconsole/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var verifier federated.Verifier
	if cfg.GoogleClientID != "" {
		gv, err := federated.NewGoogleVerifier(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			slog.Error("failed to initialize Google sign-in", "error", err)
			os.Exit(1)
		}
		verifier = gv
		slog.Info("Google sign-in enabled")
	}

	users := user.NewRepository(pool)
	provider := backend.NewPostgresProvider(pool, cfg.BcryptCost, cfg.LoginRatePerMinute)
	creds := adapter.New(provider, users, orgcode.NewValidator(users), verifier)

	router := api.NewRouter(api.RouterDeps{
		Auth:          creds,
		Codes:         creds,
		Provider:      provider,
		Users:         users,
		Projects:      project.NewRepository(pool),
		Endpoints:     endpoint.NewRepository(pool),
		DBPinger:      pool,
		Version:       cfg.Version,
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		GoogleEnabled: verifier != nil,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting API console server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
