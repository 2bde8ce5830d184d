// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package recommend implements the hybrid ranking and interest-adaptation
// core of SignalRank.
//
// The package blends four weak signals into one ranked list:
//
//   - a trained per-category relevance score (CategoryStore)
//   - a collaborative-filtering score from an external engine (CollaborativeSignal)
//   - a semantic-similarity score from a vector index (SemanticSignal)
//   - a per-user, per-category interest score that evolves with every
//     tracked interaction (InterestStore + Updater)
//
// Users with no recorded interactions follow a cold-start path that ranks
// purely by trained category relevance; established users get a concurrent
// fan-out over the signal adapters followed by a weighted merge with
// deterministic tie-breaking.
//
// The package has no dependencies on other internal packages. Stores and
// signal adapters are consumed through narrow interfaces so the database
// and transport layers can be swapped without touching the ranking logic.
package recommend
