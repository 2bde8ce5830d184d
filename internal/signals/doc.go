// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package signals contains the adapters for external recommendation
// engines: a Gorse client for collaborative filtering and feedback
// forwarding, and a Qdrant client for semantic vector search. Both wrap
// their HTTP calls in circuit breakers so a flapping upstream degrades
// the blend instead of stalling every request on its timeout.
package signals
