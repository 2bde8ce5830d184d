// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"fmt"
	"time"
)

// Action classifies a tracked user-item interaction.
type Action int

const (
	// ActionView indicates the item was shown and opened.
	ActionView Action = iota
	// ActionClick indicates the user clicked through to the item.
	ActionClick
	// ActionLike indicates an explicit positive reaction.
	ActionLike
	// ActionShare indicates the user shared the item.
	ActionShare
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionClick:
		return "click"
	case ActionLike:
		return "like"
	case ActionShare:
		return "share"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the action as its wire-format name.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a wire-format action name.
func (a *Action) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrUnknownAction, s)
	}
	parsed, err := ParseAction(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts a wire-format action name to an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "view":
		return ActionView, nil
	case "click":
		return ActionClick, nil
	case "like":
		return ActionLike, nil
	case "share":
		return ActionShare, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Signal source identifiers. The set is fixed and closed: the weighting
// scheme is not extensible at runtime.
const (
	SourceCollaborative = "collaborative"
	SourceSemantic      = "semantic"
	SourceCategory      = "category"
	SourceInterest      = "interest"
	SourcePopular       = "popular"
)

// ItemScore is an (item id, score) pair as returned by stores and signal
// adapters. Scores are normalized to [0, 1] by the producing side.
type ItemScore struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// Category is a trained content category with its detection keyword set.
type Category struct {
	// Name is the canonical lowercase category name.
	Name string `json:"name"`

	// Keywords is the token set used for query category detection.
	Keywords []string `json:"keywords"`

	// ItemCount is the number of items with a trained relevance record
	// for this category. Used as the detection tie-break key.
	ItemCount int `json:"item_count"`
}

// CategoryRelevance is a trained (item, category, score) triple. At most one
// record exists per (item, category) pair; retraining overwrites.
type CategoryRelevance struct {
	ItemID    string    `json:"item_id"`
	Category  string    `json:"category"`
	Score     float64   `json:"score"`
	TrainedAt time.Time `json:"trained_at"`
}

// UserInterest is one entry of a user's interest vector. At most one record
// exists per (user, category).
type UserInterest struct {
	Category         string    `json:"category"`
	Score            float64   `json:"score"`
	InteractionCount int       `json:"interaction_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Interaction is an append-only log entry for a tracked user action.
// It drives interest updates but is never read back by the ranking path.
type Interaction struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Category  string    `json:"category,omitempty"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ScoredItem is one entry of a ranked result. Ephemeral: computed per
// request, never persisted.
type ScoredItem struct {
	// ItemID is the stable item identifier.
	ItemID string `json:"item_id"`

	// Score is the combined final score used for ordering.
	Score float64 `json:"score"`

	// Scores is the per-source sub-score breakdown for explainability.
	Scores map[string]float64 `json:"scores,omitempty"`

	// Category is the item's primary trained category, when resolved.
	Category string `json:"category,omitempty"`

	// Rank is the 1-based position in the final ordering.
	Rank int `json:"rank"`
}

// Strategy identifies which ranking path produced a response.
type Strategy int

const (
	// StrategyColdStart is the new-user path: trained category relevance only.
	StrategyColdStart Strategy = iota
	// StrategyHybrid is the established-user path: weighted signal merge.
	StrategyHybrid
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyColdStart:
		return "cold_start"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the strategy as its wire-format name.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Request is a ranking request.
type Request struct {
	// UserID is the user to rank for.
	UserID string `json:"user_id"`

	// Query is optional free text used for category detection and the
	// semantic signal.
	Query string `json:"query,omitempty"`

	// Limit is the maximum number of results to return. Must be positive.
	Limit int `json:"limit"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a ranked, deduplicated result list with diagnostics.
type Response struct {
	Items    []ScoredItem     `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata carries timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`

	// Strategy is the ranking path taken.
	Strategy Strategy `json:"strategy"`

	// Category is the detected or fallback category, if any.
	Category string `json:"category,omitempty"`

	// SourcesUsed lists the signal sources that contributed scores.
	SourcesUsed []string `json:"sources_used"`

	// TotalCandidates is the number of distinct items considered.
	TotalCandidates int `json:"total_candidates"`

	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
