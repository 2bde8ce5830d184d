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

	"github.com/mvelan/signalrank/internal/metrics"
)

// Updater maintains per-user interest vectors: onboarding, decay-and-
// reinforce on interactions, and search-learned interests. It is safe
// for concurrent use; concurrent updates to the same user are serialized
// by optimistic concurrency on the stored vector version.
type Updater struct {
	config *Config
	logger zerolog.Logger

	categories CategoryStore
	interests  InterestStore
	log        InteractionLog
	feedback   FeedbackSink

	now func() time.Time
}

// NewUpdater creates an Updater. The feedback sink may be nil; feedback
// forwarding is then skipped entirely.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUpdater(cfg *Config, categories CategoryStore, interests InterestStore, log InteractionLog, feedback FeedbackSink, logger zerolog.Logger) (*Updater, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if categories == nil {
		return nil, errors.New("category store is required")
	}
	if interests == nil {
		return nil, errors.New("interest store is required")
	}
	if log == nil {
		return nil, errors.New("interaction log is required")
	}
	return &Updater{
		config:     cfg,
		logger:     logger.With().Str("component", "interest_updater").Logger(),
		categories: categories,
		interests:  interests,
		log:        log,
		feedback:   feedback,
		now:        time.Now,
	}, nil
}

// Onboard records a user's declared interests. Exactly OnboardCount
// distinct, known, non-catch-all categories are required; anything else
// returns ErrInvalidInterestCount. Onboarding is idempotent: repeating it
// replaces the entire vector with the declared interests at the initial
// score and a zero interaction count, discarding any accumulated state.
func (u *Updater) Onboard(ctx context.Context, userID string, interestNames []string) error {
	if err := u.validateOnboardInterests(ctx, interestNames); err != nil {
		return err
	}

	ts := u.now().UTC()
	declared := make([]UserInterest, 0, len(interestNames))
	for _, name := range interestNames {
		declared = append(declared, UserInterest{
			Category:         name,
			Score:            u.config.Interest.InitialScore,
			InteractionCount: 0,
			LastUpdated:      ts,
		})
	}
	sort.Slice(declared, func(i, j int) bool { return declared[i].Category < declared[j].Category })

	err := u.replaceWithRetry(ctx, userID, func([]UserInterest) []UserInterest { return declared })
	metrics.RecordInterestUpdate("onboard", err)
	if err != nil {
		return err
	}

	if u.feedback != nil {
		if err := u.feedback.InsertUser(ctx, userID, interestNames); err != nil {
			u.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Msg("feedback sink rejected user registration, continuing")
		}
	}

	u.logger.Info().
		Str("user_id", userID).
		Strs("interests", interestNames).
		Msg("user onboarded")
	return nil
}

func (u *Updater) validateOnboardInterests(ctx context.Context, interestNames []string) error {
	want := u.config.Interest.OnboardCount
	if len(interestNames) != want {
		return fmt.Errorf("%w: got %d, want exactly %d", ErrInvalidInterestCount, len(interestNames), want)
	}

	seen := make(map[string]struct{}, want)
	for _, name := range interestNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate interest %q", ErrInvalidInterestCount, name)
		}
		seen[name] = struct{}{}
		if u.config.SkipsCategory(name) {
			return fmt.Errorf("%w: %q is not a selectable interest", ErrInvalidInterestCount, name)
		}
	}

	categories, err := u.categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	known := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		known[cat.Name] = struct{}{}
	}
	for _, name := range interestNames {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInterestCount, name)
		}
	}
	return nil
}

// OnInteraction applies one interaction to the user's interest vector:
// every interest decays by the configured factor, then the item's primary
// category is reinforced by the action's weight. The interaction is
// appended to the log before category resolution, so interactions with
// uncategorized items are still recorded even though they return
// ErrUncategorizedItem.
func (u *Updater) OnInteraction(ctx context.Context, userID, itemID string, action Action) error {
	ts := u.now().UTC()
	interaction := Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Action:    action,
		Timestamp: ts,
	}
	if err := u.log.Append(ctx, interaction); err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	metrics.InteractionsTotal.WithLabelValues(action.String()).Inc()

	category, err := u.categories.PrimaryCategory(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrUncategorizedItem) {
			u.logger.Debug().
				Str("user_id", userID).
				Str("item_id", itemID).
				Msg("interaction logged for uncategorized item, vector unchanged")
			return fmt.Errorf("item %q: %w", itemID, err)
		}
		return fmt.Errorf("resolve category for %q: %w", itemID, err)
	}
	interaction.Category = category

	delta := u.config.Interest.ActionWeight(action)
	err = u.applyUpdate(ctx, userID, category, delta, ts)
	metrics.RecordInterestUpdate("interaction", err)
	if err != nil {
		return err
	}

	if u.feedback != nil {
		if err := u.feedback.InsertFeedback(ctx, interaction); err != nil {
			u.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Str("item_id", itemID).
				Msg("feedback sink rejected interaction, continuing")
		}
	}
	return nil
}

// applyUpdate runs the decay-and-reinforce transform under optimistic
// concurrency.
func (u *Updater) applyUpdate(ctx context.Context, userID, category string, delta float64, ts time.Time) error {
	return u.replaceWithRetry(ctx, userID, func(vector []UserInterest) []UserInterest {
		return u.decayAndReinforce(vector, category, delta, ts)
	})
}

// replaceWithRetry swaps in the vector produced by transform from the
// current one, retrying on version conflicts up to the configured bound.
func (u *Updater) replaceWithRetry(ctx context.Context, userID string, transform func([]UserInterest) []UserInterest) error {
	for attempt := 0; attempt < u.config.Interest.MaxRetries; attempt++ {
		vector, version, err := u.interests.GetVector(ctx, userID)
		if err != nil {
			return fmt.Errorf("load interest vector: %w", err)
		}

		err = u.interests.ReplaceVector(ctx, userID, transform(vector), version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("replace interest vector: %w", err)
		}
		metrics.InterestUpdateConflicts.Inc()
		u.logger.Debug().
			Str("user_id", userID).
			Int("attempt", attempt+1).
			Msg("interest vector version conflict, retrying")
	}
	return fmt.Errorf("%w: user %q after %d attempts", ErrUpdateContention, userID, u.config.Interest.MaxRetries)
}

// decayAndReinforce computes the next vector: all scores multiplied by
// the decay factor (clamping to zero below epsilon), then the target
// category incremented by delta. A category not yet in the vector is
// created with score delta and count 1.
func (u *Updater) decayAndReinforce(vector []UserInterest, category string, delta float64, ts time.Time) []UserInterest {
	next := make([]UserInterest, 0, len(vector)+1)
	found := false
	for _, in := range vector {
		in.Score *= u.config.Interest.DecayFactor
		if in.Score < u.config.Interest.DecayEpsilon {
			in.Score = 0
		}
		if in.Category == category {
			in.Score += delta
			in.InteractionCount++
			in.LastUpdated = ts
			found = true
		}
		next = append(next, in)
	}
	if !found {
		next = append(next, UserInterest{
			Category:         category,
			Score:            delta,
			InteractionCount: 1,
			LastUpdated:      ts,
		})
	}
	sort.Slice(next, func(i, j int) bool { return next[i].Category < next[j].Category })
	return next
}

// LearnFromSearch records a demonstrated interest from a search query.
// Only categories the user does not already track are learned, at the
// search-learned score; existing interests are left alone so searching
// never outweighs accumulated behavior. Catch-all categories are never
// learned.
func (u *Updater) LearnFromSearch(ctx context.Context, userID, category string) error {
	if u.config.SkipsCategory(category) {
		return nil
	}

	vector, _, err := u.interests.GetVector(ctx, userID)
	if err != nil {
		return fmt.Errorf("load interest vector: %w", err)
	}
	for _, in := range vector {
		if in.Category == category {
			return nil
		}
	}

	interest := UserInterest{
		Category:         category,
		Score:            u.config.Interest.SearchLearnedScore,
		InteractionCount: 1,
		LastUpdated:      u.now().UTC(),
	}
	err = u.interests.Upsert(ctx, userID, interest)
	metrics.RecordInterestUpdate("search", err)
	if err != nil {
		return fmt.Errorf("store search-learned interest: %w", err)
	}

	u.logger.Debug().
		Str("user_id", userID).
		Str("category", category).
		Msg("interest learned from search")
	return nil
}
