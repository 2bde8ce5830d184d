// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mvelan/signalrank/internal/recommend"
)

// Memory is an in-memory implementation of the recommendation core's
// storage contracts. Safe for concurrent use. Interest vectors carry a
// monotonically increasing per-user version for optimistic concurrency,
// matching the durable backends.
type Memory struct {
	mu sync.RWMutex

	categories map[string]recommend.Category
	relevance  map[string][]recommend.CategoryRelevance // by category, score desc
	primary    map[string]primaryEntry                  // by item ID

	vectors  map[string][]recommend.UserInterest
	versions map[string]int64

	interactions []recommend.Interaction
}

type primaryEntry struct {
	category string
	score    float64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		categories: make(map[string]recommend.Category),
		relevance:  make(map[string][]recommend.CategoryRelevance),
		primary:    make(map[string]primaryEntry),
		vectors:    make(map[string][]recommend.UserInterest),
		versions:   make(map[string]int64),
	}
}

// SeedCategories replaces the category catalog.
func (m *Memory) SeedCategories(categories []recommend.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[string]recommend.Category, len(categories))
	for _, cat := range categories {
		m.categories[cat.Name] = cat
	}
}

// SeedRelevance loads trained relevance records, replacing any existing
// training data. Item counts on the catalog are recomputed and each
// item's primary category is indexed as its highest-relevance one.
func (m *Memory) SeedRelevance(records []recommend.CategoryRelevance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.relevance = make(map[string][]recommend.CategoryRelevance)
	m.primary = make(map[string]primaryEntry)
	for _, rec := range records {
		m.relevance[rec.Category] = append(m.relevance[rec.Category], rec)
		if cur, ok := m.primary[rec.ItemID]; !ok || rec.Score > cur.score {
			m.primary[rec.ItemID] = primaryEntry{category: rec.Category, score: rec.Score}
		}
	}
	for category := range m.relevance {
		recs := m.relevance[category]
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].Score != recs[j].Score {
				return recs[i].Score > recs[j].Score
			}
			return recs[i].ItemID < recs[j].ItemID
		})
		if cat, ok := m.categories[category]; ok {
			cat.ItemCount = len(recs)
			m.categories[category] = cat
		}
	}
}

// ListCategories implements recommend.CategoryStore.
func (m *Memory) ListCategories(ctx context.Context) ([]recommend.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]recommend.Category, 0, len(m.categories))
	for _, cat := range m.categories {
		out = append(out, cat)
	}
	return out, nil
}

// ListRelevance implements recommend.CategoryStore.
func (m *Memory) ListRelevance(ctx context.Context, category string) ([]recommend.CategoryRelevance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.relevance[category]
	out := make([]recommend.CategoryRelevance, len(recs))
	copy(out, recs)
	return out, nil
}

// PrimaryCategory implements recommend.CategoryStore.
func (m *Memory) PrimaryCategory(ctx context.Context, itemID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.primary[itemID]
	if !ok {
		return "", fmt.Errorf("item %q: %w", itemID, recommend.ErrUncategorizedItem)
	}
	return entry.category, nil
}

// GetVector implements recommend.InterestStore.
func (m *Memory) GetVector(ctx context.Context, userID string) ([]recommend.UserInterest, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vec := m.vectors[userID]
	out := make([]recommend.UserInterest, len(vec))
	copy(out, vec)
	return out, m.versions[userID], nil
}

// Upsert implements recommend.InterestStore.
func (m *Memory) Upsert(ctx context.Context, userID string, interest recommend.UserInterest) error {
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

// ReplaceVector implements recommend.InterestStore.
func (m *Memory) ReplaceVector(ctx context.Context, userID string, vector []recommend.UserInterest, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[userID] != expectedVersion {
		return fmt.Errorf("user %q: version %d != %d: %w",
			userID, m.versions[userID], expectedVersion, recommend.ErrVersionConflict)
	}
	vec := make([]recommend.UserInterest, len(vector))
	copy(vec, vector)
	m.vectors[userID] = vec
	m.versions[userID]++
	return nil
}

// Append implements recommend.InteractionLog.
func (m *Memory) Append(ctx context.Context, interaction recommend.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, interaction)
	return nil
}

// Interactions returns a copy of the logged interactions for a user,
// oldest first. Used by diagnostics and tests.
func (m *Memory) Interactions(userID string) []recommend.Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]recommend.Interaction, 0)
	for _, in := range m.interactions {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}
