// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mvelan/signalrank/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/signalrank/config.yaml",
	"/etc/signalrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Gorse: GorseConfig{
			Enabled: false, // Optional - hybrid ranking degrades without it
			URL:     "http://127.0.0.1:8088",
			APIKey:  "",
			Timeout: 5 * time.Second,
		},
		Qdrant: QdrantConfig{
			Enabled:        false, // Optional - semantic signal degrades without it
			URL:            "http://127.0.0.1:6333",
			APIKey:         "",
			Collection:     "items",
			ScoreThreshold: 0.3,
			EmbeddingDim:   384,
			Timeout:        5 * time.Second,
		},
		Store: StoreConfig{
			Backend: "badger",
			Path:    "/data/signalrank",
		},
		Data: DataConfig{
			TrainedDataPath: "",
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Recommend: *recommend.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// GORSE_URL -> gorse.url
	// RECOMMEND_DECAY_FACTOR -> recommend.interest.decay_factor
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.skip_categories",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - GORSE_URL -> gorse.url
//   - RECOMMEND_DECAY_FACTOR -> recommend.interest.decay_factor
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"environment":           "server.environment",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Gorse mappings
		"gorse_enabled": "gorse.enabled",
		"gorse_url":     "gorse.url",
		"gorse_api_key": "gorse.api_key",
		"gorse_timeout": "gorse.timeout",

		// Qdrant mappings
		"qdrant_enabled":         "qdrant.enabled",
		"qdrant_url":             "qdrant.url",
		"qdrant_api_key":         "qdrant.api_key",
		"qdrant_collection":      "qdrant.collection",
		"qdrant_score_threshold": "qdrant.score_threshold",
		"qdrant_embedding_dim":   "qdrant.embedding_dim",
		"qdrant_timeout":         "qdrant.timeout",

		// Store mappings
		"store_backend": "store.backend",
		"store_path":    "store.path",

		// Data mappings
		"trained_data_path": "data.trained_data_path",

		// Security mappings
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Ranking weight mappings
		"recommend_weight_collaborative": "recommend.weights.collaborative",
		"recommend_weight_semantic":      "recommend.weights.semantic",
		"recommend_weight_category":      "recommend.weights.category",
		"recommend_weight_interest":      "recommend.weights.interest",

		// Ranking limit mappings
		"recommend_candidate_pool":  "recommend.limits.candidate_pool",
		"recommend_default_limit":   "recommend.limits.default_limit",
		"recommend_max_limit":       "recommend.limits.max_limit",
		"recommend_adapter_timeout": "recommend.limits.adapter_timeout",
		"recommend_rank_timeout":    "recommend.limits.rank_timeout",
		"recommend_min_relevance":   "recommend.limits.min_relevance",

		// Interest dynamics mappings
		"recommend_onboard_count":        "recommend.interest.onboard_count",
		"recommend_initial_score":        "recommend.interest.initial_score",
		"recommend_search_learned_score": "recommend.interest.search_learned_score",
		"recommend_decay_factor":         "recommend.interest.decay_factor",
		"recommend_decay_epsilon":        "recommend.interest.decay_epsilon",
		"recommend_view_weight":          "recommend.interest.view_weight",
		"recommend_click_weight":         "recommend.interest.click_weight",
		"recommend_like_weight":          "recommend.interest.like_weight",
		"recommend_share_weight":         "recommend.interest.share_weight",
		"recommend_max_retries":          "recommend.interest.max_retries",

		// Catch-all category mappings
		"recommend_skip_categories": "recommend.skip_categories",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
