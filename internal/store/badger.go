// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mvelan/signalrank/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	interestKeyPrefix    = "interest:"
	interactionKeyPrefix = "interaction:"
)

// Badger implements recommend.InterestStore and recommend.InteractionLog
// on BadgerDB for durable storage across restarts. Version checks run
// inside a single Badger transaction, so the optimistic-concurrency
// contract holds even with concurrent writers.
type Badger struct {
	db *badger.DB
}

// NewBadger creates a Badger-backed store over an open database.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// vectorRecord is the stored form of a user's interest vector.
type vectorRecord struct {
	Version   int64                    `json:"version"`
	Interests []recommend.UserInterest `json:"interests"`
}

// GetVector implements recommend.InterestStore.
func (s *Badger) GetVector(ctx context.Context, userID string) ([]recommend.UserInterest, int64, error) {
	var rec vectorRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(interestKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // absent user: empty vector, version 0
		}
		if err != nil {
			return fmt.Errorf("get interest vector: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return rec.Interests, rec.Version, nil
}

// Upsert implements recommend.InterestStore.
func (s *Badger) Upsert(ctx context.Context, userID string, interest recommend.UserInterest) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := readVector(txn, userID)
		if err != nil {
			return err
		}

		replaced := false
		for i := range rec.Interests {
			if rec.Interests[i].Category == interest.Category {
				rec.Interests[i] = interest
				replaced = true
				break
			}
		}
		if !replaced {
			rec.Interests = append(rec.Interests, interest)
		}
		rec.Version++
		return writeVector(txn, userID, rec)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("user %q: %w", userID, recommend.ErrVersionConflict)
	}
	return err
}

// ReplaceVector implements recommend.InterestStore.
func (s *Badger) ReplaceVector(ctx context.Context, userID string, vector []recommend.UserInterest, expectedVersion int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := readVector(txn, userID)
		if err != nil {
			return err
		}
		if rec.Version != expectedVersion {
			return fmt.Errorf("user %q: version %d != %d: %w",
				userID, rec.Version, expectedVersion, recommend.ErrVersionConflict)
		}
		next := vectorRecord{Version: rec.Version + 1, Interests: vector}
		return writeVector(txn, userID, next)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("user %q: %w", userID, recommend.ErrVersionConflict)
	}
	return err
}

func readVector(txn *badger.Txn, userID string) (vectorRecord, error) {
	var rec vectorRecord
	item, err := txn.Get([]byte(interestKeyPrefix + userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("get interest vector: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func writeVector(txn *badger.Txn, userID string, rec vectorRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal interest vector: %w", err)
	}
	return txn.Set([]byte(interestKeyPrefix+userID), data)
}

// Append implements recommend.InteractionLog. Keys embed the timestamp
// and a UUID so entries never collide and iterate in time order per user.
func (s *Badger) Append(ctx context.Context, interaction recommend.Interaction) error {
	data, err := json.Marshal(interaction)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}
	key := fmt.Sprintf("%s%s:%s:%s",
		interactionKeyPrefix,
		interaction.UserID,
		interaction.Timestamp.UTC().Format(time.RFC3339Nano),
		uuid.NewString(),
	)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Interactions returns the logged interactions for a user, oldest first.
func (s *Badger) Interactions(ctx context.Context, userID string) ([]recommend.Interaction, error) {
	prefix := []byte(interactionKeyPrefix + userID + ":")
	var out []recommend.Interaction
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var in recommend.Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			})
			if err != nil {
				return fmt.Errorf("decode interaction: %w", err)
			}
			out = append(out, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
