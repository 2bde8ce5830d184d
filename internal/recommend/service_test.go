// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testService(t *testing.T, deps RankerDeps, feedback FeedbackSink) *Service {
	t.Helper()
	svc, err := NewService(nil, deps, &mockInteractionLog{}, feedback, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestServiceOnboardReturnsInitialFeed(t *testing.T) {
	t.Parallel()

	svc := testService(t, RankerDeps{
		Categories: testCatalog(),
		Interests:  newMockInterestStore(),
	}, newMockFeedback())

	resp, err := svc.Onboard(context.Background(), "u1", []string{"technology", "science", "sports"})
	if err != nil {
		t.Fatalf("Onboard() error = %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("Onboard() returned no initial items despite trained categories")
	}
	if resp.Metadata.Strategy != StrategyColdStart {
		t.Errorf("strategy = %v, want cold start right after onboarding", resp.Metadata.Strategy)
	}
}

func TestServiceOnboardEmptyFeedIsNotAnError(t *testing.T) {
	t.Parallel()

	// Catalog knows the categories but has no trained items.
	store := &mockCategoryStore{
		categories: []Category{
			{Name: "technology"}, {Name: "science"}, {Name: "sports"},
		},
	}
	svc := testService(t, RankerDeps{Categories: store, Interests: newMockInterestStore()}, nil)

	resp, err := svc.Onboard(context.Background(), "u1", []string{"technology", "science", "sports"})
	if err != nil {
		t.Fatalf("Onboard() error = %v, want empty feed", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("items = %d, want 0", len(resp.Items))
	}
}

func TestServiceGetInterests(t *testing.T) {
	t.Parallel()

	interests := newMockInterestStore()
	interests.vectors["u1"] = []UserInterest{
		{Category: "science", Score: 9.5},
		{Category: "technology", Score: 12.5},
		{Category: "sports", Score: 9.5},
	}
	svc := testService(t, RankerDeps{Categories: testCatalog(), Interests: interests}, nil)

	vec, err := svc.GetInterests(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetInterests() error = %v", err)
	}
	want := []string{"technology", "science", "sports"} // score desc, name asc on ties
	for i, name := range want {
		if vec[i].Category != name {
			t.Errorf("interest[%d] = %q, want %q", i, vec[i].Category, name)
		}
	}

	if _, err := svc.GetInterests(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetInterests(nobody) error = %v, want ErrUserNotFound", err)
	}
}

func TestServiceSearchDetectedCategory(t *testing.T) {
	t.Parallel()

	interests := newMockInterestStore()
	svc := testService(t, RankerDeps{Categories: testCatalog(), Interests: interests}, nil)

	resp, err := svc.Search(context.Background(), "u1", "best programming tutorials", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Metadata.Category != "technology" {
		t.Fatalf("detected category = %q, want technology", resp.Metadata.Category)
	}
	if len(resp.Items) == 0 {
		t.Fatal("Search() returned no items for a trained category")
	}

	// The demonstrated interest must have been learned.
	vec, _, _ := interests.GetVector(context.Background(), "u1")
	tech, ok := interestFor(vec, "technology")
	if !ok || tech.Score != 5.0 {
		t.Errorf("search-learned interest = %+v, want score 5.0", tech)
	}
}

func TestServiceSearchFallsBackToSemantic(t *testing.T) {
	t.Parallel()

	semantic := &mockSemantic{items: []ItemScore{{ItemID: "sem-1", Score: 0.7}}}
	svc := testService(t, RankerDeps{
		Categories: testCatalog(),
		Interests:  newMockInterestStore(),
		Semantic:   semantic,
	}, nil)

	resp, err := svc.Search(context.Background(), "u1", "underwater basket weaving", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Metadata.Category != "" {
		t.Errorf("category = %q, want none detected", resp.Metadata.Category)
	}
	if len(resp.Items) != 1 || resp.Items[0].ItemID != "sem-1" {
		t.Errorf("items = %v, want semantic fallback result", resp.Items)
	}

	// Nothing learned for an undetected query.
	vec, _, _ := svc.interests.GetVector(context.Background(), "u1")
	if len(vec) != 0 {
		t.Errorf("vector = %v, want empty", vec)
	}
}

func TestServiceSearchFallsBackToPopular(t *testing.T) {
	t.Parallel()

	semantic := &mockSemantic{}
	popular := &mockPopular{items: []ItemScore{{ItemID: "pop-1", Score: 0.9}, {ItemID: "pop-2", Score: 0.4}}}
	svc := testService(t, RankerDeps{
		Categories: testCatalog(),
		Interests:  newMockInterestStore(),
		Semantic:   semantic,
		Popular:    popular,
	}, nil)

	resp, err := svc.Search(context.Background(), "u1", "underwater basket weaving", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if popular.calls.Load() != 1 {
		t.Fatalf("popular calls = %d, want 1", popular.calls.Load())
	}
	if popular.lastCategory != "" {
		t.Errorf("popular category = %q, want all-categories for an undetected query", popular.lastCategory)
	}
	if len(resp.Items) != 2 || resp.Items[0].ItemID != "pop-1" {
		t.Errorf("items = %v, want popular fallback results", resp.Items)
	}
	if len(resp.Metadata.SourcesUsed) != 1 || resp.Metadata.SourcesUsed[0] != SourcePopular {
		t.Errorf("sources = %v, want [%s]", resp.Metadata.SourcesUsed, SourcePopular)
	}
	if resp.Items[1].Rank != 2 {
		t.Errorf("rank = %d, want 2", resp.Items[1].Rank)
	}
}

func TestServiceSearchAnonymousUserLearnsNothing(t *testing.T) {
	t.Parallel()

	interests := newMockInterestStore()
	svc := testService(t, RankerDeps{Categories: testCatalog(), Interests: interests}, nil)

	if _, err := svc.Search(context.Background(), "", "software news", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(interests.vectors) != 0 {
		t.Errorf("interests stored for anonymous search: %v", interests.vectors)
	}
}

func TestServiceListCategoriesSorted(t *testing.T) {
	t.Parallel()

	svc := testService(t, RankerDeps{Categories: testCatalog(), Interests: newMockInterestStore()}, nil)
	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	for i := 1; i < len(categories); i++ {
		if categories[i-1].Name > categories[i].Name {
			t.Fatalf("categories not sorted: %q before %q", categories[i-1].Name, categories[i].Name)
		}
	}
}

func TestServiceTrackAdaptsVector(t *testing.T) {
	t.Parallel()

	interests := newMockInterestStore()
	interests.vectors["u1"] = onboardedVector("technology", "science", "sports")
	svc := testService(t, RankerDeps{Categories: testCatalog(), Interests: interests}, nil)

	if err := svc.Track(context.Background(), "u1", "item-s1", ActionShare); err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	vec, _, _ := interests.GetVector(context.Background(), "u1")
	science, _ := interestFor(vec, "science")
	if science.InteractionCount != 1 {
		t.Errorf("science count = %d, want 1", science.InteractionCount)
	}
}
