package model

import (
	"fmt"
	"strings"
)

// Category is one of the fixed entity kinds diary chunks are classified into.
type Category string

const (
	CategoryEvent           Category = "Event"
	CategoryPerson          Category = "Person"
	CategoryEmotion         Category = "Emotion"
	CategoryThought         Category = "Thought"
	CategoryProblem         Category = "Problem"
	CategoryAchievement     Category = "Achievement"
	CategoryFutureIntention Category = "FutureIntention"
)

// Non-category collections used by the auxiliary retrievers.
const (
	CollectionText    = "ChunkText"
	CollectionSummary = "ChunkSummary"
)

// AllCategories returns the fixed category set in its canonical order.
// The order doubles as the lookup order when resolving connection targets.
func AllCategories() []Category {
	return []Category{
		CategoryEvent,
		CategoryPerson,
		CategoryEmotion,
		CategoryThought,
		CategoryProblem,
		CategoryAchievement,
		CategoryFutureIntention,
	}
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(name string) (Category, error) {
	for _, c := range AllCategories() {
		if strings.EqualFold(string(c), strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// CollectionName returns the store collection holding chunks of this category.
func (c Category) CollectionName() string {
	return "Chunk" + string(c)
}

// Valid reports whether c is one of the fixed category set.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}
