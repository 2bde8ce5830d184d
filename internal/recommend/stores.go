// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import "context"

// CategoryStore provides read access to the trained category model: the
// category catalog with keyword sets, and per-item relevance scores
// produced by offline training.
type CategoryStore interface {
	// ListCategories returns all known categories. Order is unspecified.
	ListCategories(ctx context.Context) ([]Category, error)

	// ListRelevance returns trained relevance records for a category,
	// sorted by score descending. Returns an empty slice for a category
	// with no trained items.
	ListRelevance(ctx context.Context, category string) ([]CategoryRelevance, error)

	// PrimaryCategory returns the highest-relevance category for an item.
	// Returns ErrUncategorizedItem when the item appears in no category.
	PrimaryCategory(ctx context.Context, itemID string) (string, error)
}

// InterestStore persists per-user interest vectors. Implementations must
// support optimistic concurrency: GetVector returns a version token and
// ReplaceVector rejects stale writes with ErrVersionConflict.
type InterestStore interface {
	// GetVector returns the user's full interest vector and its current
	// version. A user with no vector gets an empty slice and version 0,
	// not an error.
	GetVector(ctx context.Context, userID string) ([]UserInterest, int64, error)

	// Upsert writes a single interest record unconditionally, creating
	// the user's vector if absent. Used for onboarding and search-learned
	// interests, where last-write-wins is acceptable.
	Upsert(ctx context.Context, userID string, interest UserInterest) error

	// ReplaceVector atomically replaces the user's entire vector if the
	// stored version still equals expectedVersion. Returns
	// ErrVersionConflict otherwise.
	ReplaceVector(ctx context.Context, userID string, vector []UserInterest, expectedVersion int64) error
}

// InteractionLog records user interactions for audit and offline training.
// Append-only; the ranking path never reads it.
type InteractionLog interface {
	Append(ctx context.Context, interaction Interaction) error
}
