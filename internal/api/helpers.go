// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mvelan/signalrank/internal/logging"
	"github.com/mvelan/signalrank/internal/models"
	"github.com/mvelan/signalrank/internal/recommend"
	"github.com/mvelan/signalrank/internal/validation"
)

// maxBodyBytes bounds request body size for all JSON endpoints.
const maxBodyBytes = 1 << 20 // 1MB

// maxQueryLength bounds free-text search queries.
const maxQueryLength = 500

// blockedTerms are substrings that mark a query as unsafe. Queries matching
// any of these are rejected before category detection or interest learning.
var blockedTerms = []string{
	"porn", "pornhub", "xxx", "sex", "nude", "nsfw",
	"adult", "explicit", "erotic", "naked", "xvideos",
	"redtube", "youporn",
}

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
// This includes newlines, carriage returns, tabs, and other control characters that could
// allow attackers to forge log entries or corrupt log files.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		// Replace control characters (0x00-0x1F and 0x7F) with a safe representation
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// isSafeQuery screens a free-text query before it reaches the ranking
// service. Returns false with a reason when the query is empty, too long,
// or contains a blocked term.
func isSafeQuery(query string) (bool, string) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false, "empty query"
	}
	if len(query) > maxQueryLength {
		return false, fmt.Sprintf("query too long (max %d characters)", maxQueryLength)
	}

	lower := strings.ToLower(trimmed)
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			return false, "inappropriate content detected"
		}
	}
	return true, ""
}

// respondJSON sends a JSON response with proper headers. Responses are
// personalized, so caching is disabled.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	if response.Metadata.RequestID == "" {
		response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error response in the standard envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		// Sanitize error output to prevent log injection attacks
		logger := logging.Ctx(r.Context())
		logger.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, r, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondData sends a success response in the standard envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}, started time.Time) {
	respondJSON(w, r, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// decodeJSONBody decodes a bounded JSON request body into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// statusForError maps domain errors from the ranking service to HTTP
// statuses and stable error codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidLimit),
		errors.Is(err, recommend.ErrInvalidInterestCount),
		errors.Is(err, recommend.ErrUnknownAction):
		return http.StatusBadRequest, models.CodeInvalidRequest
	case errors.Is(err, recommend.ErrUserNotFound):
		return http.StatusNotFound, models.CodeUserNotFound
	case errors.Is(err, recommend.ErrUncategorizedItem):
		return http.StatusUnprocessableEntity, models.CodeUncategorized
	case errors.Is(err, recommend.ErrNoSignalAvailable):
		return http.StatusNotFound, models.CodeNoSignal
	case errors.Is(err, recommend.ErrRankingTimeout):
		return http.StatusGatewayTimeout, models.CodeRankingTimeout
	case errors.Is(err, recommend.ErrUpdateContention):
		return http.StatusConflict, models.CodeUpdateContention
	case errors.Is(err, recommend.ErrAdapterUnavailable):
		return http.StatusServiceUnavailable, models.CodeAdapterDown
	default:
		return http.StatusInternalServerError, models.CodeInternalError
	}
}

// respondDomainError maps a service error to the envelope and sends it.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	respondError(w, r, status, code, err.Error(), err)
}
