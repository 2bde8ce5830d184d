// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package api provides the HTTP surface of the SignalRank service.
//
// Routing uses chi v5. Every response is wrapped in the models.APIResponse
// envelope and encoded with goccy/go-json. Request bodies are validated
// with internal/validation before reaching the ranking service, and domain
// errors from internal/recommend are mapped to stable HTTP statuses and
// error codes in one place (statusForError).
package api
