// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvelan/signalrank/internal/recommend"
)

func seededMemory() *Memory {
	m := NewMemory()
	m.SeedCategories(DefaultCategories())
	m.SeedRelevance([]recommend.CategoryRelevance{
		{ItemID: "item-1", Category: "technology", Score: 0.9},
		{ItemID: "item-2", Category: "technology", Score: 0.7},
		{ItemID: "item-2", Category: "education", Score: 0.8},
		{ItemID: "item-3", Category: "food", Score: 0.5},
	})
	return m
}

func TestMemoryCatalog(t *testing.T) {
	t.Parallel()

	m := seededMemory()
	ctx := context.Background()

	categories, err := m.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	counts := make(map[string]int, len(categories))
	for _, cat := range categories {
		counts[cat.Name] = cat.ItemCount
	}
	if counts["technology"] != 2 {
		t.Errorf("technology item count = %d, want 2", counts["technology"])
	}
	if counts["travel"] != 0 {
		t.Errorf("travel item count = %d, want 0", counts["travel"])
	}

	recs, err := m.ListRelevance(ctx, "technology")
	if err != nil {
		t.Fatalf("ListRelevance() error = %v", err)
	}
	if len(recs) != 2 || recs[0].ItemID != "item-1" {
		t.Errorf("relevance = %v, want item-1 first (score desc)", recs)
	}
}

func TestMemoryPrimaryCategory(t *testing.T) {
	t.Parallel()

	m := seededMemory()
	ctx := context.Background()

	// item-2 scores higher in education than technology.
	category, err := m.PrimaryCategory(ctx, "item-2")
	if err != nil {
		t.Fatalf("PrimaryCategory() error = %v", err)
	}
	if category != "education" {
		t.Errorf("primary = %q, want education", category)
	}

	_, err = m.PrimaryCategory(ctx, "unknown-item")
	if !errors.Is(err, recommend.ErrUncategorizedItem) {
		t.Errorf("PrimaryCategory(unknown) error = %v, want ErrUncategorizedItem", err)
	}
}

func TestMemoryVectorVersioning(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	vec, version, err := m.GetVector(ctx, "u1")
	if err != nil || len(vec) != 0 || version != 0 {
		t.Fatalf("GetVector(new user) = %v, %d, %v; want empty, 0, nil", vec, version, err)
	}

	interest := recommend.UserInterest{Category: "technology", Score: 10, LastUpdated: time.Now()}
	if err := m.Upsert(ctx, "u1", interest); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	_, version, _ = m.GetVector(ctx, "u1")
	if version != 1 {
		t.Fatalf("version after upsert = %d, want 1", version)
	}

	next := []recommend.UserInterest{{Category: "technology", Score: 12.5, InteractionCount: 1}}
	if err := m.ReplaceVector(ctx, "u1", next, version); err != nil {
		t.Fatalf("ReplaceVector() error = %v", err)
	}

	// Stale version must be rejected.
	err = m.ReplaceVector(ctx, "u1", next, version)
	if !errors.Is(err, recommend.ErrVersionConflict) {
		t.Fatalf("ReplaceVector(stale) error = %v, want ErrVersionConflict", err)
	}
}

func TestMemoryReplaceVectorCopies(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	vec := []recommend.UserInterest{{Category: "food", Score: 5}}
	if err := m.ReplaceVector(ctx, "u1", vec, 0); err != nil {
		t.Fatalf("ReplaceVector() error = %v", err)
	}
	vec[0].Score = 99

	stored, _, _ := m.GetVector(ctx, "u1")
	if stored[0].Score != 5 {
		t.Error("stored vector aliases the caller's slice")
	}
}

func TestMemoryInteractionLog(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := m.Append(ctx, recommend.Interaction{
			UserID: "u1", ItemID: "item-1", Action: recommend.ActionView,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	_ = m.Append(ctx, recommend.Interaction{UserID: "u2", ItemID: "item-2", Action: recommend.ActionLike})

	if got := len(m.Interactions("u1")); got != 3 {
		t.Errorf("interactions for u1 = %d, want 3", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Coding", "technology"},
		{"  GYM ", "fitness"},
		{"movie", "entertainment"},
		{"travel", "travel"},
		{"astrology", "astrology"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadTrainedData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trained.json")
	payload := `{"records":[
		{"item_id":"item-1","category":"Coding","score":0.9},
		{"item_id":"item-2","category":"food","score":0.4}
	]}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewMemory()
	m.SeedCategories(DefaultCategories())
	n, err := LoadTrainedData(m, path)
	if err != nil {
		t.Fatalf("LoadTrainedData() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("records loaded = %d, want 2", n)
	}

	// Alias normalized on load.
	recs, _ := m.ListRelevance(context.Background(), "technology")
	if len(recs) != 1 || recs[0].ItemID != "item-1" {
		t.Errorf("technology relevance = %v, want normalized Coding record", recs)
	}
}

func TestLoadTrainedDataMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadTrainedData(NewMemory(), "/nonexistent/trained.json"); err == nil {
		t.Fatal("LoadTrainedData() = nil error for missing file")
	}
}
