// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the MapleCMS API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maplecms/internal/auth"
	"maplecms/internal/cache"
	"maplecms/internal/config"
	"maplecms/internal/database"
	"maplecms/internal/handlers"
	"maplecms/internal/middleware"
	"maplecms/internal/router"
	"maplecms/internal/storage"
	"maplecms/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default admin account (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (optional — the API works without the article cache).
	var articleCache *cache.ArticleCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable — article cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		articleCache = cache.NewArticleCache(valkeyClient, cache.DefaultArticleTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	refreshTokenStore := store.NewRefreshTokenStore(db)
	mediaStore := store.NewMediaStore(db)

	// Periodically remove expired refresh-token rows.
	purgeDone := make(chan struct{})
	defer close(purgeDone)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := refreshTokenStore.PurgeExpired(); err != nil {
					slog.Warn("refresh token purge failed", "error", err)
				} else if n > 0 {
					slog.Info("purged expired refresh tokens", "count", n)
				}
			case <-purgeDone:
				return
			}
		}
	}()

	// Connect to S3-compatible object storage (optional — uploads disabled
	// without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// JWT token manager for access/refresh pairs.
	tokenManager, err := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		slog.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	// Rate limiter for the credential endpoints.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	// Create handler groups with their dependencies.
	r := router.New(router.Deps{
		Tokens:      tokenManager,
		AuthLimiter: authLimiter,
		Auth:        handlers.NewAuth(userStore, refreshTokenStore, tokenManager),
		Articles:    handlers.NewArticles(articleStore, articleCache),
		Categories:  handlers.NewCategories(categoryStore),
		Tags:        handlers.NewTags(tagStore),
		Users:       handlers.NewUsers(userStore, refreshTokenStore),
		Media:       handlers.NewMedia(mediaStore, storageClient, cfg.MaxUploadBytes),
	})

	// Create the HTTP server with sensible timeouts. ReadTimeout must
	// accommodate media uploads over slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
