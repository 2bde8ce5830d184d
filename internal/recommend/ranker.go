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
	"golang.org/x/sync/errgroup"

	"github.com/mvelan/signalrank/internal/metrics"
)

// Ranker produces blended rankings from the configured signal sources.
// It is safe for concurrent use.
//
// Users with no reinforced interests get the cold-start path: trained
// category relevance only, no adapter calls. Established users get the
// hybrid path: all adapters queried concurrently, each failure degrading
// that source's contribution to zero.
type Ranker struct {
	config   *Config
	logger   zerolog.Logger
	weights  SourceWeights
	detector *Detector

	categories CategoryStore
	interests  InterestStore

	collaborative CollaborativeSignal
	semantic      SemanticSignal
	category      CategorySignal
}

// RankerDeps bundles the stores and signal adapters a Ranker needs.
// Collaborative and Semantic may be nil; a nil adapter behaves like one
// that always fails, degrading its contribution to zero. Popular is not
// used by the ranker itself; the service uses it as a last-resort search
// fallback when configured.
type RankerDeps struct {
	Categories    CategoryStore
	Interests     InterestStore
	Collaborative CollaborativeSignal
	Semantic      SemanticSignal
	Category      CategorySignal
	Popular       PopularSignal
}

// NewRanker creates a Ranker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(cfg *Config, deps RankerDeps, logger zerolog.Logger) (*Ranker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Categories == nil {
		return nil, errors.New("category store is required")
	}
	if deps.Interests == nil {
		return nil, errors.New("interest store is required")
	}
	if deps.Category == nil {
		deps.Category = &storeCategorySignal{store: deps.Categories}
	}

	return &Ranker{
		config:        cfg,
		logger:        logger.With().Str("component", "ranker").Logger(),
		weights:       cfg.Weights.Normalize(),
		detector:      NewDetector(deps.Categories),
		categories:    deps.Categories,
		interests:     deps.Interests,
		collaborative: deps.Collaborative,
		semantic:      deps.Semantic,
		category:      deps.Category,
	}, nil
}

// Rank produces a blended ranking for one request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) Rank(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, req.Limit)
	}
	if req.Limit > r.config.Limits.MaxLimit {
		req.Limit = r.config.Limits.MaxLimit
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Limits.RankTimeout)
	defer cancel()

	logger := r.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Int("limit", req.Limit).
		Logger()

	vector, _, err := r.interests.GetVector(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load interest vector: %w", err)
	}

	strategy := StrategyHybrid
	if isNewUser(vector) {
		strategy = StrategyColdStart
	}

	var resp *Response
	if strategy == StrategyColdStart {
		resp, err = r.rankColdStart(ctx, req, vector, start, logger)
	} else {
		resp, err = r.rankHybrid(ctx, req, vector, start, logger)
	}
	if err != nil {
		metrics.RecordRank(strategy.String(), err, 0, time.Since(start))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v", ErrRankingTimeout, r.config.Limits.RankTimeout)
		}
		return nil, err
	}
	metrics.RecordRank(strategy.String(), nil, resp.Metadata.TotalCandidates, time.Since(start))

	logger.Debug().
		Str("strategy", resp.Metadata.Strategy.String()).
		Int("items", len(resp.Items)).
		Dur("latency", time.Since(start)).
		Msg("ranking complete")
	return resp, nil
}

// isNewUser reports whether a vector represents a user with no reinforced
// interests. Onboarded-but-untouched users (all counts zero) still count
// as new: their declared scores carry no behavioral evidence yet.
func isNewUser(vector []UserInterest) bool {
	for _, in := range vector {
		if in.InteractionCount > 0 {
			return false
		}
	}
	return true
}

// rankColdStart serves a new user from trained category relevance only.
// No adapter is called on this path.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) rankColdStart(ctx context.Context, req Request, vector []UserInterest, start time.Time, logger zerolog.Logger) (*Response, error) {
	category, err := r.resolveColdStartCategory(ctx, req, vector)
	if err != nil {
		return nil, err
	}

	relevance, err := r.categories.ListRelevance(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list relevance for %q: %w", category, err)
	}

	items := make([]ScoredItem, 0, req.Limit)
	for _, rel := range relevance {
		if rel.Score < r.config.Limits.MinRelevance {
			continue
		}
		items = append(items, ScoredItem{
			ItemID:   rel.ItemID,
			Score:    rel.Score,
			Scores:   map[string]float64{SourceCategory: rel.Score},
			Category: category,
		})
		if len(items) == req.Limit {
			break
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no trained items for category %q", ErrNoSignalAvailable, category)
	}
	for i := range items {
		items[i].Rank = i + 1
	}

	logger.Debug().
		Str("category", category).
		Int("candidates", len(relevance)).
		Msg("cold-start ranking")

	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			UserID:          req.UserID,
			Strategy:        StrategyColdStart,
			Category:        category,
			SourcesUsed:     []string{SourceCategory},
			TotalCandidates: len(relevance),
			LatencyMS:       time.Since(start).Milliseconds(),
			Timestamp:       time.Now().UTC(),
		},
	}, nil
}

// resolveColdStartCategory picks the category for a cold-start request:
// the detected category of the query when present, otherwise the user's
// strongest declared interest.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) resolveColdStartCategory(ctx context.Context, req Request, vector []UserInterest) (string, error) {
	if req.Query != "" {
		category, ok, err := r.detector.Detect(ctx, req.Query)
		if err != nil {
			return "", fmt.Errorf("detect category: %w", err)
		}
		if ok && !r.config.SkipsCategory(category) {
			return category, nil
		}
	}

	best := ""
	bestScore := 0.0
	for _, in := range vector {
		if r.config.SkipsCategory(in.Category) {
			continue
		}
		if in.Score > bestScore || (in.Score == bestScore && (best == "" || in.Category < best)) {
			best, bestScore = in.Category, in.Score
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: user %q has no usable interests and no detectable query", ErrNoSignalAvailable, req.UserID)
	}
	return best, nil
}

// sourceResult is one adapter's contribution to the hybrid blend.
type sourceResult struct {
	source string
	items  []ItemScore
	err    error
}

// rankHybrid queries all signal adapters concurrently and merges their
// candidates with the configured weights plus the per-item interest term.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) rankHybrid(ctx context.Context, req Request, vector []UserInterest, start time.Time, logger zerolog.Logger) (*Response, error) {
	category := r.hybridCategory(ctx, req, vector)
	results := r.gatherSignals(ctx, req, vector, category, logger)

	merged, sourcesUsed, total := r.merge(ctx, results, vector)
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: all signal sources failed or returned nothing", ErrNoSignalAvailable)
	}

	if len(merged) > req.Limit {
		merged = merged[:req.Limit]
	}
	for i := range merged {
		merged[i].Rank = i + 1
	}

	return &Response{
		Items: merged,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			UserID:          req.UserID,
			Strategy:        StrategyHybrid,
			Category:        category,
			SourcesUsed:     sourcesUsed,
			TotalCandidates: total,
			LatencyMS:       time.Since(start).Milliseconds(),
			Timestamp:       time.Now().UTC(),
		},
	}, nil
}

// hybridCategory resolves the category used for the category signal on
// the hybrid path: detected from the query when possible, else the
// user's strongest interest, else empty (the source is then skipped).
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) hybridCategory(ctx context.Context, req Request, vector []UserInterest) string {
	if req.Query != "" {
		if cat, ok, err := r.detector.Detect(ctx, req.Query); err == nil && ok && !r.config.SkipsCategory(cat) {
			return cat
		}
	}
	best, bestScore := "", 0.0
	for _, in := range vector {
		if !r.config.SkipsCategory(in.Category) && in.Score > bestScore {
			best, bestScore = in.Category, in.Score
		}
	}
	return best
}

// gatherSignals fans out to the configured adapters with a per-adapter
// timeout. Every failure is logged and degraded to an empty result so a
// slow or broken source never fails the request by itself.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Ranker) gatherSignals(ctx context.Context, req Request, vector []UserInterest, category string, logger zerolog.Logger) []sourceResult {
	pool := r.config.Limits.CandidatePool
	type fetch struct {
		source string
		run    func(context.Context) ([]ItemScore, error)
	}

	fetches := make([]fetch, 0, 3)
	if r.collaborative != nil {
		fetches = append(fetches, fetch{SourceCollaborative, func(c context.Context) ([]ItemScore, error) {
			return r.collaborative.Recommend(c, req.UserID, pool)
		}})
	}
	if r.semantic != nil {
		text := req.Query
		if text == "" {
			text = interestProfileText(vector)
		}
		if text != "" {
			fetches = append(fetches, fetch{SourceSemantic, func(c context.Context) ([]ItemScore, error) {
				return r.semantic.Search(c, text, pool)
			}})
		}
	}
	if category != "" {
		fetches = append(fetches, fetch{SourceCategory, func(c context.Context) ([]ItemScore, error) {
			return r.category.TopItems(c, category, pool)
		}})
	}

	out := make([]sourceResult, len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetches {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, r.config.Limits.AdapterTimeout)
			defer cancel()

			items, err := f.run(fctx)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("source", f.source).
					Msg("signal source failed, degrading to empty")
				out[i] = sourceResult{source: f.source, err: err}
				return nil
			}
			if len(items) > pool {
				items = items[:pool]
			}
			out[i] = sourceResult{source: f.source, items: items}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are degraded above

	return out
}

// merge blends the per-source candidates into a single deterministic
// ranking. Each item's score is the weighted sum of its per-source scores
// plus a personalization term from the user's interest in the item's
// primary category. Sorting is by score descending, item ID ascending.
func (r *Ranker) merge(ctx context.Context, results []sourceResult, vector []UserInterest) (items []ScoredItem, sourcesUsed []string, total int) {
	byItem := make(map[string]*ScoredItem)
	for _, res := range results {
		if res.err != nil || len(res.items) == 0 {
			continue
		}
		sourcesUsed = append(sourcesUsed, res.source)
		weight := r.weights.ToMap()[res.source]
		for _, is := range res.items {
			total++
			si, ok := byItem[is.ItemID]
			if !ok {
				si = &ScoredItem{ItemID: is.ItemID, Scores: make(map[string]float64, 4)}
				byItem[si.ItemID] = si
			}
			si.Scores[res.source] = is.Score
			si.Score += weight * is.Score
		}
	}
	if len(byItem) == 0 {
		return nil, nil, 0
	}

	maxScore := maxInterestScore(vector)
	interestWeight := r.weights.Interest
	interestUsed := false
	for _, si := range byItem {
		term := r.interestTerm(ctx, si, vector, maxScore)
		if term > 0 {
			si.Scores[SourceInterest] = term
			si.Score += interestWeight * term
			interestUsed = true
		}
	}
	if interestUsed {
		sourcesUsed = append(sourcesUsed, SourceInterest)
	}

	items = make([]ScoredItem, 0, len(byItem))
	for _, si := range byItem {
		items = append(items, *si)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
	sort.Strings(sourcesUsed)
	return items, sourcesUsed, total
}

// interestTerm computes the personalization term for one item: the item's
// relevance to its primary category scaled by the user's normalized
// interest in that category. Items in categories the user has no interest
// in, and uncategorized items, contribute zero.
func (r *Ranker) interestTerm(ctx context.Context, si *ScoredItem, vector []UserInterest, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	category, err := r.categories.PrimaryCategory(ctx, si.ItemID)
	if err != nil {
		return 0
	}
	si.Category = category

	var userScore float64
	for _, in := range vector {
		if in.Category == category {
			userScore = in.Score
			break
		}
	}
	if userScore <= 0 {
		return 0
	}

	relevance := si.Scores[SourceCategory]
	if relevance == 0 {
		// Item came only from external sources; treat full membership in
		// its primary category as relevance 1.
		relevance = 1
	}
	return relevance * (userScore / maxScore)
}

func maxInterestScore(vector []UserInterest) float64 {
	max := 0.0
	for _, in := range vector {
		if in.Score > max {
			max = in.Score
		}
	}
	return max
}

// interestProfileText builds a semantic-search query from a user's
// strongest interests, most important first.
func interestProfileText(vector []UserInterest) string {
	sorted := make([]UserInterest, len(vector))
	copy(sorted, vector)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Category < sorted[j].Category
	})

	const maxTerms = 5
	text := ""
	for i, in := range sorted {
		if i == maxTerms || in.Score <= 0 {
			break
		}
		if text != "" {
			text += " "
		}
		text += in.Category
	}
	return text
}

// storeCategorySignal adapts a CategoryStore into a CategorySignal.
type storeCategorySignal struct {
	store CategoryStore
}

func (s *storeCategorySignal) TopItems(ctx context.Context, category string, limit int) ([]ItemScore, error) {
	relevance, err := s.store.ListRelevance(ctx, category)
	if err != nil {
		return nil, err
	}
	items := make([]ItemScore, 0, limit)
	for _, rel := range relevance {
		items = append(items, ItemScore{ItemID: rel.ItemID, Score: rel.Score})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}
