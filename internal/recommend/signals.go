// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import "context"

// CollaborativeSignal is a collaborative-filtering recommendation source,
// typically backed by an external CF engine over HTTP. Failures degrade
// the blend rather than failing the request; implementations should wrap
// transport errors so the ranker can log them.
type CollaborativeSignal interface {
	// Recommend returns up to limit item scores for a user, best first.
	// An unknown user returns an empty slice, not an error.
	Recommend(ctx context.Context, userID string, limit int) ([]ItemScore, error)
}

// SemanticSignal is a vector-similarity recommendation source, typically
// backed by a vector index queried with an embedding of the user's
// interest profile or free-text query.
type SemanticSignal interface {
	// Search returns up to limit item scores similar to the given text,
	// best first.
	Search(ctx context.Context, text string, limit int) ([]ItemScore, error)
}

// CategorySignal returns top trained items for a category. Unlike the
// external signals this is usually backed by the local CategoryStore and
// is expected to be cheap.
type CategorySignal interface {
	// TopItems returns up to limit item scores for a category, best
	// first. An unknown category returns an empty slice, not an error.
	TopItems(ctx context.Context, category string, limit int) ([]ItemScore, error)
}

// PopularSignal is a popularity recommendation source: globally popular
// items with no personalization. Used as the last-resort feed when no
// query-driven or personalized signal produces anything.
type PopularSignal interface {
	// Popular returns up to limit popular item scores, best first,
	// optionally restricted to a category (empty means all).
	Popular(ctx context.Context, category string, limit int) ([]ItemScore, error)
}

// FeedbackSink forwards user lifecycle and feedback events to an external
// engine so its models can train on them. All methods are best effort:
// callers log failures and continue.
type FeedbackSink interface {
	// InsertUser registers a user with the external engine, with the
	// user's declared interest labels attached.
	InsertUser(ctx context.Context, userID string, labels []string) error

	// InsertFeedback forwards a single interaction event.
	InsertFeedback(ctx context.Context, interaction Interaction) error
}
