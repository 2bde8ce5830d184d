// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package signals

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mvelan/signalrank/internal/metrics"
	"github.com/mvelan/signalrank/internal/recommend"
)

// GorseConfig configures the Gorse collaborative-filtering client.
type GorseConfig struct {
	// BaseURL is the Gorse server base URL, e.g. http://gorse:8088.
	BaseURL string `json:"base_url" koanf:"base_url"`

	// APIKey is sent as X-API-Key on every request. Optional.
	APIKey string `json:"api_key" koanf:"api_key"`

	// Timeout is the HTTP client timeout. Default: 5s.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// Gorse is an HTTP client for the Gorse recommendation engine. It
// implements recommend.CollaborativeSignal and recommend.FeedbackSink.
// All calls go through a circuit breaker.
type Gorse struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

// NewGorse creates a Gorse client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGorse(cfg GorseConfig, logger zerolog.Logger) (*Gorse, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gorse base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	l := logger.With().Str("component", "gorse").Logger()
	return &Gorse{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		cb:      newBreaker("gorse", l),
		logger:  l,
	}, nil
}

// gorseItem is one scored entry from the Gorse recommend endpoint.
type gorseItem struct {
	ID    string  `json:"Id"`
	Score float64 `json:"Score"`
}

// gorseUser is the Gorse user upsert payload.
type gorseUser struct {
	UserID string   `json:"UserId"`
	Labels []string `json:"Labels"`
}

// gorseFeedback is one entry of the Gorse feedback payload.
type gorseFeedback struct {
	FeedbackType string `json:"FeedbackType"`
	UserID       string `json:"UserId"`
	ItemID       string `json:"ItemId"`
}

// Recommend implements recommend.CollaborativeSignal. An unknown user
// yields an empty slice, matching Gorse's own behavior.
func (g *Gorse) Recommend(ctx context.Context, userID string, limit int) ([]recommend.ItemScore, error) {
	start := time.Now()
	items, err := execute(g.cb, "gorse", func() ([]recommend.ItemScore, error) {
		endpoint := g.baseURL + "/api/recommend/" + url.PathEscape(strings.TrimSpace(userID)) +
			"?n=" + strconv.Itoa(limit)

		var raw []gorseItem
		if err := g.getJSON(ctx, endpoint, &raw); err != nil {
			return nil, err
		}
		out := make([]recommend.ItemScore, 0, len(raw))
		for _, item := range raw {
			out = append(out, recommend.ItemScore{ItemID: item.ID, Score: item.Score})
		}
		return out, nil
	})
	if err != nil {
		metrics.RecordSignal(recommend.SourceCollaborative, "error", time.Since(start))
		return nil, fmt.Errorf("gorse recommend: %w", err)
	}
	metrics.RecordSignal(recommend.SourceCollaborative, "ok", time.Since(start))
	return items, nil
}

// Popular implements recommend.PopularSignal: globally popular items,
// optionally within a category. Used as the last-resort search fallback
// when no personalized signal produces anything.
func (g *Gorse) Popular(ctx context.Context, category string, limit int) ([]recommend.ItemScore, error) {
	start := time.Now()
	items, err := execute(g.cb, "gorse", func() ([]recommend.ItemScore, error) {
		endpoint := g.baseURL + "/api/popular?n=" + strconv.Itoa(limit)
		if category != "" {
			endpoint += "&category=" + url.QueryEscape(category)
		}

		var raw []gorseItem
		if err := g.getJSON(ctx, endpoint, &raw); err != nil {
			return nil, err
		}
		out := make([]recommend.ItemScore, 0, len(raw))
		for _, item := range raw {
			out = append(out, recommend.ItemScore{ItemID: item.ID, Score: item.Score})
		}
		return out, nil
	})
	if err != nil {
		metrics.RecordSignal(recommend.SourcePopular, "error", time.Since(start))
		return nil, fmt.Errorf("gorse popular: %w", err)
	}
	metrics.RecordSignal(recommend.SourcePopular, "ok", time.Since(start))
	return items, nil
}

// InsertUser implements recommend.FeedbackSink.
func (g *Gorse) InsertUser(ctx context.Context, userID string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	payload := gorseUser{UserID: strings.TrimSpace(userID), Labels: labels}
	_, err := execute(g.cb, "gorse", func() (struct{}, error) {
		return struct{}{}, g.postJSON(ctx, g.baseURL+"/api/user", payload)
	})
	if err != nil {
		return fmt.Errorf("gorse insert user: %w", err)
	}
	return nil
}

// InsertFeedback implements recommend.FeedbackSink. The action name is
// used directly as the Gorse feedback type.
func (g *Gorse) InsertFeedback(ctx context.Context, interaction recommend.Interaction) error {
	payload := []gorseFeedback{{
		FeedbackType: interaction.Action.String(),
		UserID:       strings.TrimSpace(interaction.UserID),
		ItemID:       strings.ReplaceAll(strings.TrimSpace(interaction.ItemID), " ", "_"),
	}}
	_, err := execute(g.cb, "gorse", func() (struct{}, error) {
		return struct{}{}, g.postJSON(ctx, g.baseURL+"/api/feedback", payload)
	})
	if err != nil {
		return fmt.Errorf("gorse insert feedback: %w", err)
	}
	return nil
}

// Healthy reports whether the Gorse server answers its health endpoint.
func (g *Gorse) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	g.setHeaders(req)
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode == http.StatusOK
}

func (g *Gorse) setHeaders(req *http.Request) {
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (g *Gorse) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *Gorse) postJSON(ctx context.Context, endpoint string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
