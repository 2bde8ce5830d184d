// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

// Package models defines the wire-level request and response types shared
// by the HTTP API layer.
//
// All responses are wrapped in the APIResponse envelope so that clients can
// rely on a uniform shape: a status string, an optional data payload, request
// metadata, and a structured error when the call failed. Request DTOs carry
// go-playground/validator tags and are validated by internal/validation
// before reaching the service layer.
package models
