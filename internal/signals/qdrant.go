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
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mvelan/signalrank/internal/metrics"
	"github.com/mvelan/signalrank/internal/recommend"
)

// QdrantConfig configures the Qdrant semantic-search client.
type QdrantConfig struct {
	// BaseURL is the Qdrant HTTP base URL, e.g. http://qdrant:6333.
	BaseURL string `json:"base_url" koanf:"base_url"`

	// APIKey is sent as api-key on every request. Optional.
	APIKey string `json:"api_key" koanf:"api_key"`

	// Collection is the point collection to search.
	Collection string `json:"collection" koanf:"collection"`

	// ScoreThreshold drops matches below this cosine similarity. Zero
	// disables the cutoff.
	ScoreThreshold float64 `json:"score_threshold" koanf:"score_threshold"`

	// Timeout is the HTTP client timeout. Default: 5s.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// Embedder turns text into a query vector for the semantic index. The
// production deployment points this at an embedding model; tests and
// standalone deployments use the deterministic FeatureHashEmbedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Qdrant is an HTTP client for Qdrant vector search. It implements
// recommend.SemanticSignal. All calls go through a circuit breaker.
type Qdrant struct {
	cfg      QdrantConfig
	client   *http.Client
	embedder Embedder
	cb       *gobreaker.CircuitBreaker[any]
	logger   zerolog.Logger
}

// NewQdrant creates a Qdrant client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQdrant(cfg QdrantConfig, embedder Embedder, logger zerolog.Logger) (*Qdrant, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("qdrant base URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	l := logger.With().Str("component", "qdrant").Logger()
	return &Qdrant{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		embedder: embedder,
		cb:       newBreaker("qdrant", l),
		logger:   l,
	}, nil
}

// qdrantSearchRequest is the points/search payload.
type qdrantSearchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
	WithPayload    bool      `json:"with_payload"`
}

// qdrantSearchResponse is the points/search result envelope.
type qdrantSearchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			ItemID string `json:"item_id"`
		} `json:"payload"`
	} `json:"result"`
	Status string `json:"status"`
}

// Search implements recommend.SemanticSignal.
func (q *Qdrant) Search(ctx context.Context, text string, limit int) ([]recommend.ItemScore, error) {
	start := time.Now()

	vector, err := q.embedder.Embed(ctx, text)
	if err != nil {
		metrics.RecordSignal(recommend.SourceSemantic, "error", time.Since(start))
		return nil, fmt.Errorf("embed query: %w", err)
	}

	items, err := execute(q.cb, "qdrant", func() ([]recommend.ItemScore, error) {
		return q.search(ctx, vector, limit)
	})
	if err != nil {
		metrics.RecordSignal(recommend.SourceSemantic, "error", time.Since(start))
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	metrics.RecordSignal(recommend.SourceSemantic, "ok", time.Since(start))
	return items, nil
}

func (q *Qdrant) search(ctx context.Context, vector []float32, limit int) ([]recommend.ItemScore, error) {
	payload := qdrantSearchRequest{
		Vector:         vector,
		Limit:          limit,
		ScoreThreshold: q.cfg.ScoreThreshold,
		WithPayload:    true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	endpoint := q.cfg.BaseURL + "/collections/" + q.cfg.Collection + "/points/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var decoded qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]recommend.ItemScore, 0, len(decoded.Result))
	for _, hit := range decoded.Result {
		if hit.Payload.ItemID == "" {
			continue
		}
		out = append(out, recommend.ItemScore{ItemID: hit.Payload.ItemID, Score: hit.Score})
	}
	return out, nil
}

// Healthy reports whether the collection is reachable. Used by the
// readiness endpoint; failures are reported, not fatal.
func (q *Qdrant) Healthy(ctx context.Context) bool {
	endpoint := q.cfg.BaseURL + "/collections/" + q.cfg.Collection
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode == http.StatusOK
}
