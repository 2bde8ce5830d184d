// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package models

import "time"

// APIResponse represents a standardized API response wrapper used by all
// HTTP endpoints. Success responses carry Data; failure responses carry
// Error. Metadata is always present.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains request-level metadata attached to every response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents a structured error in an API response. Code is a
// stable machine-readable identifier; Message is human-readable; Details
// carries optional field-level context.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Stable error codes returned in APIError.Code.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeUncategorized     = "UNCATEGORIZED_ITEM"
	CodeNoSignal          = "NO_SIGNAL_AVAILABLE"
	CodeRankingTimeout    = "RANKING_TIMEOUT"
	CodeUpdateContention  = "UPDATE_CONTENTION"
	CodeAdapterDown       = "ADAPTER_UNAVAILABLE"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeUnsafeQuery       = "UNSAFE_QUERY"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeResourceNotFound  = "NOT_FOUND"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeMalformedBody     = "MALFORMED_BODY"
	CodeServiceStarting   = "SERVICE_STARTING"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
)

// HealthStatus reports the liveness of the service and the reachability of
// its external signal adapters.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
