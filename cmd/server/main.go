// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package main is the entry point for the Clipstream server.
//
// Clipstream is a video-sharing platform backend: accounts and JWT sessions,
// video publishing through an external media host, comments, likes,
// subscriptions, playlists, tweets, a creator dashboard, and an operator
// admin surface.
//
// Startup order:
//
//  1. Configuration: koanf v2 layers defaults, an optional YAML file, and
//     environment variables.
//  2. Logging: zerolog, configured from the loaded settings.
//  3. Database: DuckDB with the full relational schema.
//  4. Auth: JWT token manager and request middleware.
//  5. Media: circuit-broken client for the external media host.
//  6. Admin: badger-backed sessions and the generic CRUD surface, enabled
//     only when admin emails are configured.
//  7. HTTP server, run under a suture supervisor tree.
//
// The server shuts down gracefully on SIGINT/SIGTERM: the listener stops
// accepting, in-flight requests drain within the shutdown timeout, then the
// database and session store close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipstream/clipstream/internal/admin"
	"github.com/clipstream/clipstream/internal/api"
	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/media"
	"github.com/clipstream/clipstream/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("admin_enabled", cfg.AdminEnabled()).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer closeWithLog("database", db.Close)
	logging.Info().Msg("Database initialized")

	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	uploader := media.NewBreakerClient(&cfg.Media)
	if err := uploader.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Media host unreachable at startup (will retry per request)")
	} else {
		logging.Info().Str("media_host", cfg.Media.BaseURL).Msg("Media host reachable")
	}

	handlers := api.NewHandlers(db, tokens, uploader, cfg)
	authMW := auth.NewMiddleware(tokens, db, handlers.Unauthorized)
	chiMW := api.NewChiMiddleware(&cfg.Auth)
	defer chiMW.Stop()

	var adminHandler *admin.Handler
	if cfg.AdminEnabled() {
		sessions, err := admin.OpenSessionStore(cfg.Admin.SessionPath, cfg.Admin.SessionSecret, cfg.Admin.SessionTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open admin session store")
		}
		defer closeWithLog("admin sessions", sessions.Close)
		adminHandler = admin.NewHandler(db, sessions, &cfg.Admin, cfg.IsProduction())
		logging.Info().Int("admin_emails", len(cfg.Admin.Emails)).Msg("Admin surface enabled")
	}

	router := api.NewRouter(handlers, authMW, chiMW, adminHandler)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, draining")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped")
}

func closeWithLog(name string, close func() error) {
	if err := close(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error closing component")
	}
}
