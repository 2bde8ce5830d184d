// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateGorse(); err != nil {
		return err
	}

	if err := c.validateQdrant(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	return c.Recommend.Validate()
}

// validateServer validates the HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}

	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

// validateGorse validates Gorse configuration (only if enabled)
func (c *Config) validateGorse() error {
	if !c.Gorse.Enabled {
		return nil // Gorse is optional - no validation needed when disabled
	}

	if c.Gorse.URL == "" {
		return fmt.Errorf("GORSE_URL is required when GORSE_ENABLED=true")
	}
	if err := validateHTTPURL(c.Gorse.URL, "GORSE_URL"); err != nil {
		return err
	}
	if c.Gorse.Timeout <= 0 {
		return fmt.Errorf("GORSE_TIMEOUT must be positive")
	}
	return nil
}

// validateQdrant validates Qdrant configuration (only if enabled)
func (c *Config) validateQdrant() error {
	if !c.Qdrant.Enabled {
		return nil // Qdrant is optional - no validation needed when disabled
	}

	if c.Qdrant.URL == "" {
		return fmt.Errorf("QDRANT_URL is required when QDRANT_ENABLED=true")
	}
	if err := validateHTTPURL(c.Qdrant.URL, "QDRANT_URL"); err != nil {
		return err
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("QDRANT_COLLECTION is required when QDRANT_ENABLED=true")
	}
	if c.Qdrant.ScoreThreshold < 0 || c.Qdrant.ScoreThreshold > 1 {
		return fmt.Errorf("QDRANT_SCORE_THRESHOLD must be between 0 and 1, got %f", c.Qdrant.ScoreThreshold)
	}
	if c.Qdrant.EmbeddingDim <= 0 {
		return fmt.Errorf("QDRANT_EMBEDDING_DIM must be positive, got %d", c.Qdrant.EmbeddingDim)
	}
	if c.Qdrant.Timeout <= 0 {
		return fmt.Errorf("QDRANT_TIMEOUT must be positive")
	}
	return nil
}

// validateStore validates the persistence backend selection
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "memory":
		return nil
	case "badger":
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("STORE_BACKEND must be memory or badger, got %q", c.Store.Backend)
	}
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
// Validates: scheme (http/https), host present, no paths or query params.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Allow trailing slash but no other paths
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
