// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mvelan/signalrank/internal/logging"
	"github.com/mvelan/signalrank/internal/models"
	"github.com/mvelan/signalrank/internal/recommend"
)

// HealthChecker reports reachability of an external signal adapter.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across two files:
//   - handlers.go: Handler struct, constructor, all endpoint methods
//   - helpers.go: Response envelope, validation, query safety helpers
type Handler struct {
	svc       *recommend.Service
	checkers  map[string]HealthChecker
	version   string
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a new API handler.
//
// checkers maps an adapter name (e.g. "gorse", "qdrant") to its health
// probe; nil entries are skipped. The map is only read by the health
// endpoints.
func NewHandler(svc *recommend.Service, checkers map[string]HealthChecker, version string, logger zerolog.Logger) *Handler {
	filtered := make(map[string]HealthChecker, len(checkers))
	for name, hc := range checkers {
		if hc != nil {
			filtered[name] = hc
		}
	}

	return &Handler{
		svc:       svc,
		checkers:  filtered,
		version:   version,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Onboard handles POST /api/v1/users/onboard. It seeds the interest vector
// from exactly three category picks and returns an initial feed.
func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.OnboardRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeMalformedBody, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp, err := h.svc.Onboard(r.Context(), req.UserID, req.Interests)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, resp, started)
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.RecommendRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeMalformedBody, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.Query != "" {
		if ok, reason := isSafeQuery(req.Query); !ok {
			respondError(w, r, http.StatusBadRequest, models.CodeUnsafeQuery, reason, nil)
			return
		}
	}

	limit := h.svc.DefaultLimit()
	if req.Limit != nil {
		limit = *req.Limit
	}
	resp, err := h.svc.Recommend(r.Context(), recommend.Request{
		UserID:    req.UserID,
		Query:     req.Query,
		Limit:     limit,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, resp, started)
}

// trackResult is the response payload of the track endpoint.
type trackResult struct {
	Recorded bool   `json:"recorded"`
	Adapted  bool   `json:"adapted"`
	Detail   string `json:"detail,omitempty"`
}

// Track handles POST /api/v1/track. An uncategorized item is still recorded
// in the interaction log; the response reports that no interest adaptation
// happened rather than failing the request.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.TrackRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeMalformedBody, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	action, err := recommend.ParseAction(req.Action)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeInvalidRequest, err.Error(), nil)
		return
	}

	err = h.svc.Track(r.Context(), req.UserID, req.ItemID, action)
	switch {
	case err == nil:
		respondData(w, r, http.StatusOK, trackResult{Recorded: true, Adapted: true}, started)
	case errors.Is(err, recommend.ErrUncategorizedItem):
		// Logged, but no category to reinforce.
		respondData(w, r, http.StatusOK, trackResult{
			Recorded: true,
			Adapted:  false,
			Detail:   "item has no trained category; interaction recorded without interest update",
		}, started)
	default:
		respondDomainError(w, r, err)
	}
}

// GetInterests handles GET /api/v1/users/{userID}/interests.
func (h *Handler) GetInterests(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, models.CodeInvalidRequest, "userID is required", nil)
		return
	}

	interests, err := h.svc.GetInterests(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"interests": interests,
	}, started)
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	}, started)
}

// Search handles GET /api/v1/search?q=&user_id=&limit=. Unsafe queries are
// rejected before any category detection or interest learning happens.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	query := r.URL.Query().Get("q")
	if ok, reason := isSafeQuery(query); !ok {
		respondError(w, r, http.StatusBadRequest, models.CodeUnsafeQuery, reason, nil)
		return
	}

	userID := r.URL.Query().Get("user_id")
	limit := getIntParam(r, "limit", 0)

	req := models.SearchRequest{Query: query, UserID: userID, Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp, err := h.svc.Search(r.Context(), userID, query, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, resp, started)
}

// HealthLive handles GET /api/v1/health/live. Always healthy while the
// process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, models.HealthStatus{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready. Reports per-adapter
// reachability; degrades to 503 only when every configured adapter is down.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checkers))
	healthy := 0

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if h.checkers[name].Healthy(ctx) {
			components[name] = "ok"
			healthy++
		} else {
			components[name] = "unreachable"
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if len(h.checkers) > 0 && healthy == 0 {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else if healthy < len(h.checkers) {
		status = "partial"
	}

	respondData(w, r, httpStatus, models.HealthStatus{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now().UTC(),
	}, started)
}

// Health handles GET /api/v1/health. Combined liveness plus uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondData(w, r, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}, started)
}
