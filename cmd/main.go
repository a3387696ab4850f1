/*
Package main is the entry point of the dmchat server.

It loads configuration, initializes logging, opens the configured store, starts the
connection Hub and the HTTP server, and shuts everything down in order on SIGINT or
SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/chat"
	"dmchat/internal/app/presence"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/store"
	"dmchat/internal/app/store/postgres"
	"dmchat/internal/app/store/sqlite"
	"dmchat/internal/configs"
	"dmchat/internal/handler"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/pow"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("database_driver", cfg.DatabaseDriver).
		Bool("image_uploads", cfg.StorageEnabled()).
		Int("pow_difficulty", cfg.PowDifficulty).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open store", "driver", cfg.DatabaseDriver)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logx.Error(err, "Failed to close store")
		}
	}()

	var storageService storage.StorageService
	if cfg.StorageEnabled() {
		storageService, err = storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
	} else {
		logx.Warn("Object storage not configured, image uploads disabled")
	}

	tokens, err := jwt.NewTokenService(cfg.JWTSecret, jwt.UserIdentityExpiration)
	if err != nil {
		logx.Fatal(err, "Failed to initialize token service")
	}

	registry := presence.NewRegistry()
	hub := chat.NewHub(registry)
	go hub.Run()

	deps := &handler.AppDeps{
		Config:     cfg,
		Store:      db,
		Tokens:     tokens,
		Guard:      auth.NewGuard(tokens, db.Users()),
		Registry:   registry,
		Hub:        hub,
		Dispatcher: chat.NewDispatcher(registry),
		Storage:    storageService,
		Pow:        pow.NewPoWManager(ctx, cfg.PowDifficulty),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(ctx, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info("dmchat server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked WebSocket connections are not tracked by Shutdown; the Hub closes them.
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

func openStore(ctx context.Context, cfg *configs.AppConfig) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case configs.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseDSN)
	case configs.DriverSQLite:
		return sqlite.Open(ctx, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
