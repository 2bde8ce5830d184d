// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package models

// OnboardRequest seeds an interest vector for a new user from exactly three
// category picks and returns an initial feed.
type OnboardRequest struct {
	UserID    string   `json:"user_id" validate:"required,min=1,max=128"`
	Interests []string `json:"interests" validate:"required,len=3,dive,required,category_name"`
}

// RecommendRequest asks for a ranked feed. Query is optional; when present
// it steers category detection. An omitted limit means the server default;
// an explicit limit must be positive.
type RecommendRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=128"`
	Query  string `json:"query" validate:"omitempty,max=500"`
	Limit  *int   `json:"limit" validate:"omitempty,max=50"`
}

// TrackRequest records a user interaction with an item.
type TrackRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=128"`
	ItemID string `json:"item_id" validate:"required,min=1,max=256"`
	Action string `json:"action" validate:"required,action_kind"`
}

// SearchRequest is the decoded form of GET /api/v1/search query parameters.
// UserID is optional; anonymous searches never touch interest vectors.
type SearchRequest struct {
	Query  string `json:"q" validate:"required,min=1,max=500"`
	UserID string `json:"user_id" validate:"omitempty,max=128"`
	Limit  int    `json:"limit" validate:"min=0,max=50"`
}
