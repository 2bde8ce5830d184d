// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package recommend

import (
	"context"
	"strings"
	"unicode"
)

// Detector maps free-text queries to known categories by keyword token
// overlap. Detection is intentionally simple and deterministic: no
// stemming, no embeddings, no fuzzy matching.
type Detector struct {
	store CategoryStore
}

// NewDetector creates a Detector over the given category catalog.
func NewDetector(store CategoryStore) *Detector {
	return &Detector{store: store}
}

// Detect returns the best-matching category for a query. The match score
// is the number of distinct query tokens present in a category's keyword
// set. Ties break by trained item count descending, then category name
// ascending, so equal inputs always detect the same category. A query
// with no keyword overlap returns ok=false.
func (d *Detector) Detect(ctx context.Context, query string) (category string, ok bool, err error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return "", false, nil
	}

	categories, err := d.store.ListCategories(ctx)
	if err != nil {
		return "", false, err
	}

	var (
		best      Category
		bestScore int
	)
	for _, cat := range categories {
		keywords := make(map[string]struct{}, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			keywords[strings.ToLower(kw)] = struct{}{}
		}

		score := 0
		for token := range tokens {
			if _, found := keywords[token]; found {
				score++
			}
		}
		if score == 0 {
			continue
		}

		switch {
		case score > bestScore:
			best, bestScore = cat, score
		case score == bestScore && cat.ItemCount > best.ItemCount:
			best = cat
		case score == bestScore && cat.ItemCount == best.ItemCount && cat.Name < best.Name:
			best = cat
		}
	}

	if bestScore == 0 {
		return "", false, nil
	}
	return best.Name, true, nil
}

// tokenize lowercases the input, strips punctuation, and returns the set
// of distinct tokens. Returns an empty set for blank input.
func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
