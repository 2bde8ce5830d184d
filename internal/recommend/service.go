// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Service is the facade over the ranking and interest-adaptation core.
// Transport layers call it; it owns the Ranker, Updater and Detector and
// keeps the wiring between them out of the handlers.
type Service struct {
	config   *Config
	logger   zerolog.Logger
	ranker   *Ranker
	updater  *Updater
	detector *Detector

	categories CategoryStore
	interests  InterestStore
	semantic   SemanticSignal
	popular    PopularSignal
}

// NewService wires the core from its dependencies.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg *Config, deps RankerDeps, log InteractionLog, feedback FeedbackSink, logger zerolog.Logger) (*Service, error) {
	ranker, err := NewRanker(cfg, deps, logger)
	if err != nil {
		return nil, fmt.Errorf("create ranker: %w", err)
	}
	updater, err := NewUpdater(ranker.config, deps.Categories, deps.Interests, log, feedback, logger)
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}

	return &Service{
		config:     ranker.config,
		logger:     logger.With().Str("component", "recommend_service").Logger(),
		ranker:     ranker,
		updater:    updater,
		detector:   NewDetector(deps.Categories),
		categories: deps.Categories,
		interests:  deps.Interests,
		semantic:   deps.Semantic,
		popular:    deps.Popular,
	}, nil
}

// Onboard registers a user's declared interests and returns an initial
// ranking so clients can render content immediately after signup.
func (s *Service) Onboard(ctx context.Context, userID string, interests []string) (*Response, error) {
	if err := s.updater.Onboard(ctx, userID, interests); err != nil {
		return nil, err
	}

	resp, err := s.ranker.Rank(ctx, Request{UserID: userID, Limit: s.config.Limits.DefaultLimit})
	if err != nil {
		// Onboarding succeeded; an empty initial feed is not a failure.
		if errors.Is(err, ErrNoSignalAvailable) {
			return &Response{
				Items: []ScoredItem{},
				Metadata: ResponseMetadata{
					UserID:    userID,
					Strategy:  StrategyColdStart,
					Timestamp: time.Now().UTC(),
				},
			}, nil
		}
		return nil, err
	}
	return resp, nil
}

// Recommend produces a blended ranking for a user. The limit must be
// positive; callers that allow it to be omitted substitute DefaultLimit.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	return s.ranker.Rank(ctx, req)
}

// DefaultLimit returns the configured default result count, for callers
// whose transport distinguishes an omitted limit from an explicit one.
func (s *Service) DefaultLimit() int {
	return s.config.Limits.DefaultLimit
}

// Track records an interaction and adapts the user's interest vector.
func (s *Service) Track(ctx context.Context, userID, itemID string, action Action) error {
	return s.updater.OnInteraction(ctx, userID, itemID, action)
}

// GetInterests returns a user's interest vector, strongest first.
// Returns ErrUserNotFound for a user with no vector at all.
func (s *Service) GetInterests(ctx context.Context, userID string) ([]UserInterest, error) {
	vector, _, err := s.interests.GetVector(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load interest vector: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}

	sort.Slice(vector, func(i, j int) bool {
		if vector[i].Score != vector[j].Score {
			return vector[i].Score > vector[j].Score
		}
		return vector[i].Category < vector[j].Category
	})
	return vector, nil
}

// ListCategories returns the category catalog sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// Search serves a free-text query. When the query detects to a known
// category the user's interest in it is learned and trained items for the
// category are returned; otherwise the query falls through to semantic
// search, then to globally popular items when a popularity source is
// configured. Either way the response carries the detected category (if
// any) so clients can surface it.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) (*Response, error) {
	start := time.Now()
	if limit <= 0 {
		limit = s.config.Limits.DefaultLimit
	}
	if limit > s.config.Limits.MaxLimit {
		limit = s.config.Limits.MaxLimit
	}

	category, detected, err := s.detector.Detect(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("detect category: %w", err)
	}

	if detected && userID != "" {
		if err := s.updater.LearnFromSearch(ctx, userID, category); err != nil {
			s.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Str("category", category).
				Msg("failed to learn interest from search, continuing")
		}
	}

	var items []ScoredItem
	sources := []string{}
	if detected && !s.config.SkipsCategory(category) {
		items, err = s.searchByCategory(ctx, category, limit)
		if err != nil {
			return nil, err
		}
		sources = append(sources, SourceCategory)
	}
	if len(items) == 0 && s.semantic != nil {
		items, err = s.searchSemantic(ctx, query, limit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("semantic search failed")
		} else if len(items) > 0 {
			sources = append(sources, SourceSemantic)
		}
	}
	if len(items) == 0 && s.popular != nil {
		popularCategory := ""
		if detected && !s.config.SkipsCategory(category) {
			popularCategory = category
		}
		items, err = s.searchPopular(ctx, popularCategory, limit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("popular fallback failed")
		} else if len(items) > 0 {
			sources = append(sources, SourcePopular)
		}
	}

	meta := ResponseMetadata{
		UserID:          userID,
		SourcesUsed:     sources,
		TotalCandidates: len(items),
		LatencyMS:       time.Since(start).Milliseconds(),
		Timestamp:       time.Now().UTC(),
	}
	if detected {
		meta.Category = category
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return &Response{Items: items, Metadata: meta}, nil
}

func (s *Service) searchByCategory(ctx context.Context, category string, limit int) ([]ScoredItem, error) {
	relevance, err := s.categories.ListRelevance(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list relevance for %q: %w", category, err)
	}
	items := make([]ScoredItem, 0, limit)
	for _, rel := range relevance {
		items = append(items, ScoredItem{
			ItemID:   rel.ItemID,
			Score:    rel.Score,
			Scores:   map[string]float64{SourceCategory: rel.Score},
			Category: category,
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Service) searchSemantic(ctx context.Context, query string, limit int) ([]ScoredItem, error) {
	sctx, cancel := context.WithTimeout(ctx, s.config.Limits.AdapterTimeout)
	defer cancel()

	scores, err := s.semantic.Search(sctx, query, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ScoredItem, 0, len(scores))
	for _, is := range scores {
		items = append(items, ScoredItem{
			ItemID: is.ItemID,
			Score:  is.Score,
			Scores: map[string]float64{SourceSemantic: is.Score},
		})
	}
	return items, nil
}

func (s *Service) searchPopular(ctx context.Context, category string, limit int) ([]ScoredItem, error) {
	pctx, cancel := context.WithTimeout(ctx, s.config.Limits.AdapterTimeout)
	defer cancel()

	scores, err := s.popular.Popular(pctx, category, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ScoredItem, 0, len(scores))
	for _, is := range scores {
		items = append(items, ScoredItem{
			ItemID:   is.ItemID,
			Score:    is.Score,
			Scores:   map[string]float64{SourcePopular: is.Score},
			Category: category,
		})
	}
	return items, nil
}
