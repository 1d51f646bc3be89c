// Command taskhubd is the TaskHub server daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/taskhub/taskhub/config"
	"github.com/taskhub/taskhub/internal/version"
	"github.com/taskhub/taskhub/server"
	"github.com/taskhub/taskhub/store"
)

var configPath = flag.String("config", "taskhub.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	logger.Info("starting taskhubd",
		"version", version.Version,
		"commit", version.Commit,
	)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret must be set")
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store %s: %v", cfg.DBPath, err)
	}
	defer st.Close()

	srv := server.New(*cfg, version.Version, logger, st)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case <-sigCh:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("server stop error", "error", err)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
