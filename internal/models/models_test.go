// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package models

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestAPIResponseSuccessOmitsError(t *testing.T) {
	t.Parallel()

	resp := APIResponse{
		Status:   "success",
		Data:     map[string]string{"hello": "world"},
		Metadata: Metadata{Timestamp: time.Unix(0, 0).UTC(), RequestID: "req-1"},
	}

	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), `"error"`) {
		t.Errorf("success response should omit error field, got %s", out)
	}
	if !strings.Contains(string(out), `"request_id":"req-1"`) {
		t.Errorf("expected request_id in metadata, got %s", out)
	}
}

func TestAPIResponseErrorShape(t *testing.T) {
	t.Parallel()

	resp := APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error: &APIError{
			Code:    CodeUserNotFound,
			Message: "no interest vector for user",
			Details: map[string]interface{}{"user_id": "u1"},
		},
	}

	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"code":"USER_NOT_FOUND"`) {
		t.Errorf("expected error code in output, got %s", out)
	}
	if strings.Contains(string(out), `"data"`) {
		t.Errorf("error response should omit data field, got %s", out)
	}
}

func TestAPIErrorImplementsError(t *testing.T) {
	t.Parallel()

	e := &APIError{Code: CodeRankingTimeout, Message: "ranking deadline exceeded"}
	if got := e.Error(); got != "RANKING_TIMEOUT: ranking deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
}
