// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package signals

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// FeatureHashEmbedder produces deterministic bag-of-words embeddings via
// feature hashing. It needs no external model and always maps the same
// text to the same vector, which is what the semantic index requires for
// reproducible search. Indexing and querying must use the same dimension.
type FeatureHashEmbedder struct {
	dim int
}

// NewFeatureHashEmbedder creates an embedder with the given dimension.
// The dimension must match the Qdrant collection's vector size.
func NewFeatureHashEmbedder(dim int) *FeatureHashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &FeatureHashEmbedder{dim: dim}
}

// Dim returns the embedding dimension.
func (e *FeatureHashEmbedder) Dim() int { return e.dim }

// Embed implements Embedder. Tokens hash into buckets with a sign hash
// to reduce collision bias; the vector is L2-normalized so cosine
// similarity behaves across texts of different lengths.
func (e *FeatureHashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, token := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(e.dim)) //nolint:gosec // dim is small and positive
		sign := float32(1)
		if (sum>>32)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
