// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// mockCategoryStore implements CategoryStore for testing.
type mockCategoryStore struct {
	categories []Category
	relevance  map[string][]CategoryRelevance
	primary    map[string]string

	categoriesErr error
	relevanceErr  error
}

func (m *mockCategoryStore) ListCategories(ctx context.Context) ([]Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return m.categories, nil
}

func (m *mockCategoryStore) ListRelevance(ctx context.Context, category string) ([]CategoryRelevance, error) {
	if m.relevanceErr != nil {
		return nil, m.relevanceErr
	}
	return m.relevance[category], nil
}

func (m *mockCategoryStore) PrimaryCategory(ctx context.Context, itemID string) (string, error) {
	if cat, ok := m.primary[itemID]; ok {
		return cat, nil
	}
	return "", ErrUncategorizedItem
}

// mockInterestStore implements InterestStore for testing. It mirrors the
// real stores' optimistic-concurrency behavior, including an optional
// number of injected conflicts.
type mockInterestStore struct {
	mu        sync.Mutex
	vectors   map[string][]UserInterest
	versions  map[string]int64
	conflicts int // ReplaceVector fails this many times before succeeding

	getErr     error
	upsertErr  error
	replaceErr error
}

func newMockInterestStore() *mockInterestStore {
	return &mockInterestStore{
		vectors:  make(map[string][]UserInterest),
		versions: make(map[string]int64),
	}
}

func (m *mockInterestStore) GetVector(ctx context.Context, userID string) ([]UserInterest, int64, error) {
	if m.getErr != nil {
		return nil, 0, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vec := make([]UserInterest, len(m.vectors[userID]))
	copy(vec, m.vectors[userID])
	return vec, m.versions[userID], nil
}

func (m *mockInterestStore) Upsert(ctx context.Context, userID string, interest UserInterest) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vec := m.vectors[userID]
	replaced := false
	for i := range vec {
		if vec[i].Category == interest.Category {
			vec[i] = interest
			replaced = true
			break
		}
	}
	if !replaced {
		vec = append(vec, interest)
	}
	m.vectors[userID] = vec
	m.versions[userID]++
	return nil
}

func (m *mockInterestStore) ReplaceVector(ctx context.Context, userID string, vector []UserInterest, expectedVersion int64) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		m.versions[userID]++
		return ErrVersionConflict
	}
	if m.versions[userID] != expectedVersion {
		return ErrVersionConflict
	}
	vec := make([]UserInterest, len(vector))
	copy(vec, vector)
	m.vectors[userID] = vec
	m.versions[userID]++
	return nil
}

// mockInteractionLog implements InteractionLog for testing.
type mockInteractionLog struct {
	mu           sync.Mutex
	interactions []Interaction
	appendErr    error
}

func (m *mockInteractionLog) Append(ctx context.Context, interaction Interaction) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, interaction)
	return nil
}

func (m *mockInteractionLog) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.interactions)
}

// mockCollaborative implements CollaborativeSignal for testing.
type mockCollaborative struct {
	items []ItemScore
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (m *mockCollaborative) Recommend(ctx context.Context, userID string, limit int) ([]ItemScore, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

// mockSemantic implements SemanticSignal for testing.
type mockSemantic struct {
	items []ItemScore
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (m *mockSemantic) Search(ctx context.Context, text string, limit int) ([]ItemScore, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

// mockPopular implements PopularSignal for testing.
type mockPopular struct {
	items []ItemScore
	err   error
	calls atomic.Int32

	lastCategory string
}

func (m *mockPopular) Popular(ctx context.Context, category string, limit int) ([]ItemScore, error) {
	m.calls.Add(1)
	m.lastCategory = category
	if m.err != nil {
		return nil, m.err
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

// mockFeedback implements FeedbackSink for testing.
type mockFeedback struct {
	mu       sync.Mutex
	users    map[string][]string
	feedback []Interaction

	userErr     error
	feedbackErr error
}

func newMockFeedback() *mockFeedback {
	return &mockFeedback{users: make(map[string][]string)}
}

func (m *mockFeedback) InsertUser(ctx context.Context, userID string, labels []string) error {
	if m.userErr != nil {
		return m.userErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = labels
	return nil
}

func (m *mockFeedback) InsertFeedback(ctx context.Context, interaction Interaction) error {
	if m.feedbackErr != nil {
		return m.feedbackErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, interaction)
	return nil
}

// testCatalog returns a small category catalog shared by the tests.
func testCatalog() *mockCategoryStore {
	return &mockCategoryStore{
		categories: []Category{
			{Name: "technology", Keywords: []string{"tech", "software", "programming", "ai"}, ItemCount: 3},
			{Name: "science", Keywords: []string{"physics", "biology", "research", "ai"}, ItemCount: 2},
			{Name: "sports", Keywords: []string{"football", "tennis", "match"}, ItemCount: 1},
			{Name: "general", Keywords: []string{"news"}, ItemCount: 10},
		},
		relevance: map[string][]CategoryRelevance{
			"technology": {
				{ItemID: "item-t1", Category: "technology", Score: 0.9},
				{ItemID: "item-t2", Category: "technology", Score: 0.8},
				{ItemID: "item-t3", Category: "technology", Score: 0.4},
			},
			"science": {
				{ItemID: "item-s1", Category: "science", Score: 0.7},
				{ItemID: "item-s2", Category: "science", Score: 0.6},
			},
			"sports": {
				{ItemID: "item-p1", Category: "sports", Score: 0.5},
			},
		},
		primary: map[string]string{
			"item-t1": "technology",
			"item-t2": "technology",
			"item-t3": "technology",
			"item-s1": "science",
			"item-s2": "science",
			"item-p1": "sports",
		},
	}
}
