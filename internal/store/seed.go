// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mvelan/signalrank/internal/recommend"
)

// DefaultCategories returns the built-in category catalog with keyword
// sets for query detection. Item counts are zero until trained relevance
// data is loaded.
func DefaultCategories() []recommend.Category {
	return []recommend.Category{
		{
			Name: "cricket",
			Keywords: []string{
				"cricket", "cricketer", "wicket", "boundary", "innings", "ipl",
				"odi", "t20", "batting", "bowling", "batsman", "bowler",
				"wicketkeeper", "fielder", "stump",
			},
		},
		{
			Name: "football",
			Keywords: []string{
				"football", "soccer", "fifa", "uefa", "goal", "penalty",
				"striker", "midfielder", "defender", "goalkeeper", "winger",
			},
		},
		{
			Name: "sports",
			Keywords: []string{
				"sports", "match", "tournament", "championship", "league",
				"team", "player", "athlete", "coach", "basketball", "tennis",
				"badminton", "volleyball", "hockey", "olympics", "medal",
				"trophy", "racing", "motorsport",
			},
		},
		{
			Name: "technology",
			Keywords: []string{
				"ai", "ml", "python", "javascript", "programming", "coding",
				"software", "developer", "engineer", "code", "api", "database",
				"cloud", "docker", "kubernetes", "devops", "algorithm",
				"analytics", "frontend", "backend", "github", "deployment",
			},
		},
		{
			Name: "food",
			Keywords: []string{
				"recipe", "cooking", "cuisine", "dish", "meal", "restaurant",
				"food", "pasta", "pizza", "biryani", "curry", "chef",
				"ingredient", "spice", "baking", "dessert", "vegan", "vegetarian",
			},
		},
		{
			Name: "travel",
			Keywords: []string{
				"travel", "tourism", "vacation", "holiday", "trip", "tour",
				"journey", "destination", "hotel", "flight", "resort",
				"backpacking", "beach", "mountain", "trekking", "hiking",
				"adventure", "camping", "safari", "sightseeing",
			},
		},
		{
			Name: "fitness",
			Keywords: []string{
				"yoga", "gym", "exercise", "workout", "fitness", "meditation",
				"pranayama", "asana", "mindfulness", "wellness", "health",
				"cardio", "strength", "bodybuilding", "running", "cycling",
				"swimming", "jogging",
			},
		},
		{
			Name: "entertainment",
			Keywords: []string{
				"movie", "film", "cinema", "actor", "actress", "director",
				"bollywood", "hollywood", "netflix", "music", "song", "album",
				"singer", "concert", "band", "series", "show", "gaming",
				"esports",
			},
		},
		{
			Name: "education",
			Keywords: []string{
				"study", "learning", "course", "tutorial", "education",
				"school", "university", "college", "exam", "student",
				"teacher", "mathematics", "science", "physics", "chemistry",
				"biology", "history", "geography", "literature",
				"certification", "degree",
			},
		},
		{
			Name: "business",
			Keywords: []string{
				"business", "startup", "entrepreneur", "company", "corporate",
				"marketing", "sales", "management", "finance", "accounting",
				"investment", "stock", "trading", "cryptocurrency",
				"leadership", "strategy", "innovation",
			},
		},
		{
			Name: "productivity",
			Keywords: []string{
				"productivity", "productive", "wfh", "organization",
				"planning", "goals", "habits", "efficiency", "focus",
				"concentration", "task", "project",
			},
		},
		{
			Name: "lifestyle",
			Keywords: []string{
				"lifestyle", "living", "routine", "home", "decor", "interior",
				"furniture", "fashion", "style", "clothing", "outfit",
				"shopping", "beauty", "makeup", "skincare",
			},
		},
		{
			Name: "nature",
			Keywords: []string{
				"nature", "environment", "wildlife", "animals", "forest",
				"trees", "plants", "garden", "flowers", "birds", "eco",
				"sustainability", "climate", "weather",
			},
		},
	}
}

// categoryAliases maps loosely phrased category names to catalog names.
var categoryAliases = map[string]string{
	"racing":     "sports",
	"motorsport": "sports",
	"f1":         "sports",

	"trekking":    "travel",
	"hiking":      "travel",
	"adventure":   "travel",
	"backpacking": "travel",

	"wfh":         "productivity",
	"remote work": "productivity",
	"work":        "productivity",

	"coding":      "technology",
	"programming": "technology",
	"software":    "technology",
	"app":         "technology",

	"cooking": "food",
	"recipe":  "food",
	"dish":    "food",

	"exercise": "fitness",
	"gym":      "fitness",
	"workout":  "fitness",

	"movie": "entertainment",
	"film":  "entertainment",
	"music": "entertainment",
	"game":  "entertainment",
}

// NormalizeCategory maps a loosely phrased category name to its catalog
// name. Unknown names pass through lowercased.
func NormalizeCategory(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := categoryAliases[lower]; ok {
		return canonical
	}
	return lower
}

// trainedFile is the on-disk format for trained relevance data, one
// record per item/category pair.
type trainedFile struct {
	Records []recommend.CategoryRelevance `json:"records"`
}

// LoadTrainedData reads trained category relevance from a JSON file and
// seeds it into the store. Category names are normalized on load.
func LoadTrainedData(m *Memory, path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return 0, fmt.Errorf("read trained data: %w", err)
	}

	var file trainedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse trained data: %w", err)
	}
	for i := range file.Records {
		file.Records[i].Category = NormalizeCategory(file.Records[i].Category)
	}
	m.SeedRelevance(file.Records)
	return len(file.Records), nil
}
