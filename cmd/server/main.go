// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package main is the entry point for the SignalRank server.
//
// SignalRank blends collaborative filtering, semantic vector search, trained
// category relevance, and per-user interest vectors into one ranked feed,
// and adapts those interest vectors from user interactions with a
// decay-and-reinforce rule.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Stores: Category catalog (in-memory, seeded) plus interest/interaction
//     persistence (memory or BadgerDB)
//  3. Signal adapters: Gorse (collaborative) and Qdrant (semantic), both optional
//  4. Ranking service: hybrid ranker, interest updater, category detector
//  5. HTTP Server: REST API with Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (configurable timeout)
//   - Closes the persistence backend
//
// # Example Usage
//
// Development (in-memory store, no external adapters):
//
//	export STORE_BACKEND=memory
//	./signalrank
//
// Production with Gorse and Qdrant:
//
//	export STORE_BACKEND=badger
//	export STORE_PATH=/data/signalrank
//	export GORSE_ENABLED=true
//	export GORSE_URL=http://gorse:8088
//	export QDRANT_ENABLED=true
//	export QDRANT_URL=http://qdrant:6333
//	export QDRANT_COLLECTION=items
//	./signalrank
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/mvelan/signalrank/internal/api"
	"github.com/mvelan/signalrank/internal/config"
	"github.com/mvelan/signalrank/internal/logging"
	"github.com/mvelan/signalrank/internal/recommend"
	"github.com/mvelan/signalrank/internal/signals"
	"github.com/mvelan/signalrank/internal/store"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("store_backend", cfg.Store.Backend).
		Bool("gorse_enabled", cfg.Gorse.Enabled).
		Bool("qdrant_enabled", cfg.Qdrant.Enabled).
		Msg("Starting SignalRank")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	logger := logging.Logger()

	// Category catalog and trained relevance always live in memory; they are
	// read-mostly and seeded at startup.
	catalog := store.NewMemory()
	catalog.SeedCategories(store.DefaultCategories())
	if cfg.Data.TrainedDataPath != "" {
		n, err := store.LoadTrainedData(catalog, cfg.Data.TrainedDataPath)
		if err != nil {
			return fmt.Errorf("load trained data: %w", err)
		}
		logging.Info().Int("records", n).Str("path", cfg.Data.TrainedDataPath).Msg("Trained relevance data loaded")
	}

	// Interest vectors and the interaction log use the configured backend.
	var (
		interests recommend.InterestStore
		log       recommend.InteractionLog
	)
	switch cfg.Store.Backend {
	case "badger":
		opts := badger.DefaultOptions(cfg.Store.Path).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return fmt.Errorf("open badger at %s: %w", cfg.Store.Path, err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing badger store")
			}
		}()
		b := store.NewBadger(db)
		interests, log = b, b
		logging.Info().Str("path", cfg.Store.Path).Msg("BadgerDB store initialized")
	default: // "memory", validated in config
		interests, log = catalog, catalog
		logging.Info().Msg("In-memory store initialized (data is not persisted)")
	}

	// Optional external signal adapters. A disabled or failed adapter leaves
	// the corresponding signal out of the blend; it never blocks startup.
	var (
		collaborative recommend.CollaborativeSignal
		semantic      recommend.SemanticSignal
		popular       recommend.PopularSignal
		feedback      recommend.FeedbackSink
		checkers      = map[string]api.HealthChecker{}
	)

	if cfg.Gorse.Enabled {
		gorse, err := signals.NewGorse(signals.GorseConfig{
			BaseURL: cfg.Gorse.URL,
			APIKey:  cfg.Gorse.APIKey,
			Timeout: cfg.Gorse.Timeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("create gorse client: %w", err)
		}
		collaborative = gorse
		popular = gorse
		feedback = gorse
		checkers["gorse"] = gorse
		logging.Info().Str("url", cfg.Gorse.URL).Msg("Gorse collaborative adapter enabled")
	} else {
		logging.Info().Msg("Gorse disabled - collaborative signal unavailable")
	}

	if cfg.Qdrant.Enabled {
		embedder := signals.NewFeatureHashEmbedder(cfg.Qdrant.EmbeddingDim)
		qdrant, err := signals.NewQdrant(signals.QdrantConfig{
			BaseURL:        cfg.Qdrant.URL,
			APIKey:         cfg.Qdrant.APIKey,
			Collection:     cfg.Qdrant.Collection,
			ScoreThreshold: cfg.Qdrant.ScoreThreshold,
			Timeout:        cfg.Qdrant.Timeout,
		}, embedder, logger)
		if err != nil {
			return fmt.Errorf("create qdrant client: %w", err)
		}
		semantic = qdrant
		checkers["qdrant"] = qdrant
		logging.Info().Str("url", cfg.Qdrant.URL).Str("collection", cfg.Qdrant.Collection).Msg("Qdrant semantic adapter enabled")
	} else {
		logging.Info().Msg("Qdrant disabled - semantic signal unavailable")
	}

	svc, err := recommend.NewService(&cfg.Recommend, recommend.RankerDeps{
		Categories:    catalog,
		Interests:     interests,
		Collaborative: collaborative,
		Semantic:      semantic,
		Popular:       popular,
	}, log, feedback, logger)
	if err != nil {
		return fmt.Errorf("create ranking service: %w", err)
	}

	handler := api.NewHandler(svc, checkers, version, logger)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
