// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package config provides centralized configuration management for the
// SignalRank service.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"time"

	"github.com/mvelan/signalrank/internal/recommend"
)

// Config holds all application configuration loaded from environment
// variables and config files.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   LoggingConfig    `koanf:"logging"`
	Gorse     GorseConfig      `koanf:"gorse"`  // Optional: external collaborative-filtering engine
	Qdrant    QdrantConfig     `koanf:"qdrant"` // Optional: vector similarity index
	Store     StoreConfig      `koanf:"store"`
	Data      DataConfig       `koanf:"data"`
	Security  SecurityConfig   `koanf:"security"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// GorseConfig holds connection settings for the external
// collaborative-filtering engine. When disabled, the hybrid ranker degrades
// gracefully to the remaining signal sources and onboarding/feedback
// forwarding becomes a no-op.
type GorseConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// QdrantConfig holds connection settings for the vector similarity index.
// When disabled, semantic search contributes nothing to the hybrid merge.
type QdrantConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	APIKey         string        `koanf:"api_key"`
	Collection     string        `koanf:"collection"`
	ScoreThreshold float64       `koanf:"score_threshold"`
	EmbeddingDim   int           `koanf:"embedding_dim"`
	Timeout        time.Duration `koanf:"timeout"`
}

// StoreConfig selects the interest/interaction persistence backend.
//
// Backends:
//   - memory: in-process, lost on restart (development, tests)
//   - badger: embedded BadgerDB at Path (production default)
type StoreConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// DataConfig holds paths to seed data loaded at startup.
type DataConfig struct {
	// TrainedDataPath points to a JSON file of trained item-category
	// relevance records. Empty means only the built-in catalog is loaded.
	TrainedDataPath string `koanf:"trained_data_path"`
}

// SecurityConfig holds rate limiting and CORS settings for the HTTP API.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
