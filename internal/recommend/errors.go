// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import "errors"

// Core error taxonomy. Handlers match these with errors.Is and map them to
// transport status codes; everything else is an internal error.
var (
	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidInterestCount indicates an onboarding call that did not
	// supply exactly the required number of distinct categories.
	ErrInvalidInterestCount = errors.New("onboarding requires exactly three distinct interests")

	// ErrUncategorizedItem indicates an interaction on an item with no
	// trained category. The interaction is still logged; the interest
	// vector is left untouched.
	ErrUncategorizedItem = errors.New("item has no trained category")

	// ErrNoSignalAvailable indicates that every signal source was empty or
	// failed. Callers should present an empty result, not an error page.
	ErrNoSignalAvailable = errors.New("no signal source available")

	// ErrRankingTimeout indicates the overall rank deadline was exceeded.
	// A partial result is never returned silently in its place.
	ErrRankingTimeout = errors.New("ranking timed out")

	// ErrAdapterUnavailable marks a single signal adapter failure. It is
	// internal: the ranker always downgrades it to an empty contribution.
	ErrAdapterUnavailable = errors.New("signal adapter unavailable")

	// ErrVersionConflict indicates a concurrent writer changed a user's
	// interest vector between read and replace. Absorbed by the bounded
	// optimistic-retry loop in the Updater.
	ErrVersionConflict = errors.New("interest vector version conflict")

	// ErrUpdateContention indicates the optimistic-retry budget was
	// exhausted. Transient: the caller may retry the whole interaction.
	ErrUpdateContention = errors.New("interest update contention, retry")

	// ErrUnknownAction indicates an unrecognized interaction action kind.
	ErrUnknownAction = errors.New("unknown action")

	// ErrUserNotFound indicates a lookup for a user with no records.
	ErrUserNotFound = errors.New("user not found")
)
