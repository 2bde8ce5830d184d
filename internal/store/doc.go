// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package store provides the persistence backends for the recommendation
// core: an in-memory store for tests and single-node deployments, and a
// BadgerDB-backed store for durable interest vectors and interaction
// logs. The category catalog is always held in memory; it is small,
// read-mostly, and produced by offline training.
package store
