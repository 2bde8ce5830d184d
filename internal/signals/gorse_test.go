// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package signals

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mvelan/signalrank/internal/recommend"
)

func TestGorseRecommend(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"Id":"item-1","Score":0.9},{"Id":"item-2","Score":0.4}]`)
	}))
	defer srv.Close()

	g, err := NewGorse(GorseConfig{BaseURL: srv.URL, APIKey: "secret"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGorse() error = %v", err)
	}

	items, err := g.Recommend(context.Background(), "user 1", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if gotPath != "/api/recommend/user%201" {
		t.Errorf("path = %q, want escaped user id", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want secret", gotKey)
	}
	if len(items) != 2 || items[0].ItemID != "item-1" || items[0].Score != 0.9 {
		t.Errorf("items = %v", items)
	}
}

func TestGorseRecommendUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g, _ := NewGorse(GorseConfig{BaseURL: srv.URL}, zerolog.Nop())
	if _, err := g.Recommend(context.Background(), "u1", 10); err == nil {
		t.Fatal("Recommend() = nil error, want upstream failure")
	}
}

func TestGorsePopular(t *testing.T) {
	t.Parallel()

	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"Id":"pop-1","Score":0.8},{"Id":"pop-2","Score":0.3}]`)
	}))
	defer srv.Close()

	g, err := NewGorse(GorseConfig{BaseURL: srv.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGorse() error = %v", err)
	}

	items, err := g.Popular(context.Background(), "technology", 10)
	if err != nil {
		t.Fatalf("Popular() error = %v", err)
	}
	if gotURI != "/api/popular?n=10&category=technology" {
		t.Errorf("uri = %q, want popular endpoint with category", gotURI)
	}
	if len(items) != 2 || items[0].ItemID != "pop-1" || items[0].Score != 0.8 {
		t.Errorf("items = %v", items)
	}

	if _, err := g.Popular(context.Background(), "", 5); err != nil {
		t.Fatalf("Popular() without category error = %v", err)
	}
	if gotURI != "/api/popular?n=5" {
		t.Errorf("uri = %q, want no category parameter", gotURI)
	}
}

func TestGorseInsertUser(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g, _ := NewGorse(GorseConfig{BaseURL: srv.URL}, zerolog.Nop())
	if err := g.InsertUser(context.Background(), " u1 ", []string{"technology", "food"}); err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}
	if got["UserId"] != "u1" {
		t.Errorf("UserId = %v, want trimmed u1", got["UserId"])
	}
	labels, _ := got["Labels"].([]any)
	if len(labels) != 2 {
		t.Errorf("Labels = %v, want 2 entries", got["Labels"])
	}
}

func TestGorseInsertFeedback(t *testing.T) {
	t.Parallel()

	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feedback" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	g, _ := NewGorse(GorseConfig{BaseURL: srv.URL}, zerolog.Nop())
	err := g.InsertFeedback(context.Background(), recommend.Interaction{
		UserID: "u1", ItemID: "my item", Action: recommend.ActionLike,
	})
	if err != nil {
		t.Fatalf("InsertFeedback() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("payload entries = %d, want 1", len(got))
	}
	if got[0]["FeedbackType"] != "like" {
		t.Errorf("FeedbackType = %v, want like", got[0]["FeedbackType"])
	}
	if got[0]["ItemId"] != "my_item" {
		t.Errorf("ItemId = %v, want spaces replaced", got[0]["ItemId"])
	}
}

func TestGorseHealthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g, _ := NewGorse(GorseConfig{BaseURL: srv.URL}, zerolog.Nop())
	if !g.Healthy(context.Background()) {
		t.Error("Healthy() = false, want true")
	}

	srv.Close()
	if g.Healthy(context.Background()) {
		t.Error("Healthy() = true after server shutdown")
	}
}

func TestGorseRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewGorse(GorseConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("NewGorse() = nil error without base URL")
	}
}
