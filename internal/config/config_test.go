// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %s, want badger", cfg.Store.Backend)
	}
	if cfg.Gorse.Enabled || cfg.Qdrant.Enabled {
		t.Error("external adapters should be disabled by default")
	}
	if cfg.Recommend.Weights.Collaborative != 0.4 {
		t.Errorf("collaborative weight = %f, want 0.4", cfg.Recommend.Weights.Collaborative)
	}
	if cfg.Recommend.Interest.DecayFactor != 0.95 {
		t.Errorf("decay factor = %f, want 0.95", cfg.Recommend.Interest.DecayFactor)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantSub: "HTTP_PORT",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantSub: "ENVIRONMENT",
		},
		{
			name: "gorse enabled without url",
			mutate: func(c *Config) {
				c.Gorse.Enabled = true
				c.Gorse.URL = ""
			},
			wantSub: "GORSE_URL",
		},
		{
			name: "gorse url with path",
			mutate: func(c *Config) {
				c.Gorse.Enabled = true
				c.Gorse.URL = "http://localhost:8088/api"
			},
			wantSub: "GORSE_URL",
		},
		{
			name: "qdrant enabled without collection",
			mutate: func(c *Config) {
				c.Qdrant.Enabled = true
				c.Qdrant.Collection = ""
			},
			wantSub: "QDRANT_COLLECTION",
		},
		{
			name: "qdrant threshold out of range",
			mutate: func(c *Config) {
				c.Qdrant.Enabled = true
				c.Qdrant.ScoreThreshold = 1.5
			},
			wantSub: "QDRANT_SCORE_THRESHOLD",
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantSub: "STORE_BACKEND",
		},
		{
			name: "badger without path",
			mutate: func(c *Config) {
				c.Store.Backend = "badger"
				c.Store.Path = ""
			},
			wantSub: "STORE_PATH",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantSub: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantSub: "LOG_FORMAT",
		},
		{
			name:    "bad decay factor",
			mutate:  func(c *Config) { c.Recommend.Interest.DecayFactor = 1.5 },
			wantSub: "decay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"GORSE_URL", "gorse.url"},
		{"QDRANT_COLLECTION", "qdrant.collection"},
		{"STORE_BACKEND", "store.backend"},
		{"RECOMMEND_DECAY_FACTOR", "recommend.interest.decay_factor"},
		{"RECOMMEND_WEIGHT_SEMANTIC", "recommend.weights.semantic"},
		{"RANDOM_UNRELATED_VAR", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%s) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithKoanfEnvOverride(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("RECOMMEND_LIKE_WEIGHT", "4.0")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %s, want memory", cfg.Store.Backend)
	}
	if cfg.Recommend.Interest.LikeWeight != 4.0 {
		t.Errorf("LikeWeight = %f, want 4.0", cfg.Recommend.Interest.LikeWeight)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yamlBody := `
server:
  port: 7070
store:
  backend: memory
recommend:
  weights:
    collaborative: 0.5
    semantic: 0.2
    category: 0.2
    interest: 0.1
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Recommend.Weights.Collaborative != 0.5 {
		t.Errorf("collaborative weight = %f, want 0.5", cfg.Recommend.Weights.Collaborative)
	}
	// Untouched values keep defaults
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
}

func TestSliceFieldFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %s, want %s", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}
