// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tunables for the ranking and interest-adaptation core.
type Config struct {
	// Weights defines the relative contribution of each signal source.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights SourceWeights `json:"weights" koanf:"weights"`

	// Limits contains operational limits for the ranking path.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Interest contains the decay-and-reinforce parameters.
	Interest InterestConfig `json:"interest" koanf:"interest"`

	// SkipCategories lists catch-all category names that are never learned
	// as interests and never used as a ranking category.
	SkipCategories []string `json:"skip_categories" koanf:"skip_categories"`
}

// SourceWeights defines the relative contribution of each signal source.
// The set of sources is fixed; see the Source* constants.
type SourceWeights struct {
	// Collaborative is the weight for the external CF engine.
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`

	// Semantic is the weight for vector-index similarity.
	Semantic float64 `json:"semantic" koanf:"semantic"`

	// Category is the weight for trained category relevance.
	Category float64 `json:"category" koanf:"category"`

	// Interest is the weight for the personalized interest term.
	Interest float64 `json:"interest" koanf:"interest"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SourceWeights) Normalize() SourceWeights {
	sum := w.Collaborative + w.Semantic + w.Category + w.Interest
	if sum == 0 {
		const equalWeight = 0.25
		return SourceWeights{
			Collaborative: equalWeight,
			Semantic:      equalWeight,
			Category:      equalWeight,
			Interest:      equalWeight,
		}
	}
	return SourceWeights{
		Collaborative: w.Collaborative / sum,
		Semantic:      w.Semantic / sum,
		Category:      w.Category / sum,
		Interest:      w.Interest / sum,
	}
}

// ToMap returns the weights as a source-name-keyed map.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SourceWeights) ToMap() map[string]float64 {
	return map[string]float64{
		SourceCollaborative: w.Collaborative,
		SourceSemantic:      w.Semantic,
		SourceCategory:      w.Category,
		SourceInterest:      w.Interest,
	}
}

// LimitsConfig contains operational limits for the ranking path.
type LimitsConfig struct {
	// CandidatePool is the per-source candidate truncation size. Bounds
	// merge cost regardless of how much an adapter returns.
	// Default: 50.
	CandidatePool int `json:"candidate_pool" koanf:"candidate_pool"`

	// DefaultLimit is the result count used when the transport layer does
	// not specify one. Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the maximum allowed result count. Default: 50.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// AdapterTimeout is the per-adapter call deadline within one rank
	// request. On expiry that adapter contributes nothing. Default: 2s.
	AdapterTimeout time.Duration `json:"adapter_timeout" koanf:"adapter_timeout"`

	// RankTimeout is the overall deadline for one rank request.
	// Exceeding it fails the request rather than returning a partial
	// result silently. Default: 10s.
	RankTimeout time.Duration `json:"rank_timeout" koanf:"rank_timeout"`

	// MinRelevance is the minimum trained relevance score for an item to
	// be a cold-start candidate. Default: 0.
	MinRelevance float64 `json:"min_relevance" koanf:"min_relevance"`
}

// InterestConfig contains the decay-and-reinforce parameters.
type InterestConfig struct {
	// OnboardCount is the exact number of interests required at
	// onboarding. Default: 3.
	OnboardCount int `json:"onboard_count" koanf:"onboard_count"`

	// InitialScore is the score assigned to each onboarded interest.
	// Default: 10.0.
	InitialScore float64 `json:"initial_score" koanf:"initial_score"`

	// SearchLearnedScore is the score assigned when a new interest is
	// learned from a search query. Lower than InitialScore so declared
	// interests keep precedence. Default: 5.0.
	SearchLearnedScore float64 `json:"search_learned_score" koanf:"search_learned_score"`

	// DecayFactor is the multiplicative decay applied to every interest
	// score on each interaction. Default: 0.95.
	DecayFactor float64 `json:"decay_factor" koanf:"decay_factor"`

	// DecayEpsilon is the floor below which a decayed score clamps to
	// exactly zero. Default: 1e-6.
	DecayEpsilon float64 `json:"decay_epsilon" koanf:"decay_epsilon"`

	// Action weights, monotonic in implied engagement strength.
	ViewWeight  float64 `json:"view_weight" koanf:"view_weight"`   // Default: 0.5
	ClickWeight float64 `json:"click_weight" koanf:"click_weight"` // Default: 1.0
	LikeWeight  float64 `json:"like_weight" koanf:"like_weight"`   // Default: 3.0
	ShareWeight float64 `json:"share_weight" koanf:"share_weight"` // Default: 5.0

	// MaxRetries bounds the optimistic-concurrency retry loop for one
	// interest update. Default: 5.
	MaxRetries int `json:"max_retries" koanf:"max_retries"`
}

// ActionWeight returns the reinforcement delta for an action.
func (c InterestConfig) ActionWeight(a Action) float64 {
	switch a {
	case ActionView:
		return c.ViewWeight
	case ActionClick:
		return c.ClickWeight
	case ActionLike:
		return c.LikeWeight
	case ActionShare:
		return c.ShareWeight
	default:
		return c.ViewWeight
	}
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: SourceWeights{
			Collaborative: 0.4,
			Semantic:      0.3,
			Category:      0.2,
			Interest:      0.1,
		},
		Limits: LimitsConfig{
			CandidatePool:  50,
			DefaultLimit:   10,
			MaxLimit:       50,
			AdapterTimeout: 2 * time.Second,
			RankTimeout:    10 * time.Second,
			MinRelevance:   0,
		},
		Interest: InterestConfig{
			OnboardCount:       3,
			InitialScore:       10.0,
			SearchLearnedScore: 5.0,
			DecayFactor:        0.95,
			DecayEpsilon:       1e-6,
			ViewWeight:         0.5,
			ClickWeight:        1.0,
			LikeWeight:         3.0,
			ShareWeight:        5.0,
			MaxRetries:         5,
		},
		SkipCategories: []string{"general", "other", "unknown", "misc"},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Collaborative < 0 || c.Weights.Semantic < 0 ||
		c.Weights.Category < 0 || c.Weights.Interest < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}

	if c.Limits.CandidatePool < 1 {
		return fmt.Errorf("limits.candidate_pool must be positive, got %d", c.Limits.CandidatePool)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.AdapterTimeout <= 0 {
		return fmt.Errorf("limits.adapter_timeout must be positive, got %v", c.Limits.AdapterTimeout)
	}
	if c.Limits.RankTimeout < c.Limits.AdapterTimeout {
		return fmt.Errorf("limits.rank_timeout must be >= limits.adapter_timeout, got %v < %v",
			c.Limits.RankTimeout, c.Limits.AdapterTimeout)
	}
	if c.Limits.MinRelevance < 0 || c.Limits.MinRelevance > 1 {
		return fmt.Errorf("limits.min_relevance must be in [0, 1], got %f", c.Limits.MinRelevance)
	}

	if c.Interest.OnboardCount < 1 {
		return fmt.Errorf("interest.onboard_count must be positive, got %d", c.Interest.OnboardCount)
	}
	if c.Interest.InitialScore <= 0 {
		return fmt.Errorf("interest.initial_score must be positive, got %f", c.Interest.InitialScore)
	}
	if c.Interest.DecayFactor <= 0 || c.Interest.DecayFactor >= 1 {
		return fmt.Errorf("interest.decay_factor must be in (0, 1), got %f", c.Interest.DecayFactor)
	}
	if c.Interest.DecayEpsilon < 0 {
		return fmt.Errorf("interest.decay_epsilon must be non-negative, got %f", c.Interest.DecayEpsilon)
	}
	if c.Interest.ViewWeight > c.Interest.ClickWeight ||
		c.Interest.ClickWeight > c.Interest.LikeWeight ||
		c.Interest.LikeWeight > c.Interest.ShareWeight {
		return fmt.Errorf("interest action weights must be monotonic: view <= click <= like <= share")
	}
	if c.Interest.MaxRetries < 1 {
		return fmt.Errorf("interest.max_retries must be positive, got %d", c.Interest.MaxRetries)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := &Config{
		Weights:  c.Weights,
		Limits:   c.Limits,
		Interest: c.Interest,
	}
	clone.SkipCategories = make([]string, len(c.SkipCategories))
	copy(clone.SkipCategories, c.SkipCategories)
	return clone
}

// SkipsCategory reports whether a category name is in the skip list.
func (c *Config) SkipsCategory(name string) bool {
	for _, s := range c.SkipCategories {
		if s == name {
			return true
		}
	}
	return false
}
