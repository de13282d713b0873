package model

import (
	"fmt"
	"strings"
	"time"
)

type RetrievalMethod string

const (
	RetrievalMethodVector     RetrievalMethod = "vector"
	RetrievalMethodConnection RetrievalMethod = "connection"
)

// Chunk represents one categorized unit of diary text as stored in a
// collection. Which descriptive fields are populated depends on the
// collection: events and achievements carry title/description, persons and
// emotions carry name/description, raw text and summaries carry content.
// An empty string means the field is absent. The retrieval core treats
// chunks as read-only.
type Chunk struct {
	ID          int       `json:"id"`
	ObjectID    string    `json:"object_id"`
	Collection  string    `json:"collection"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}

// EmbeddingText composes the text that gets embedded for this chunk, the
// populated descriptive fields joined in priority order.
func (c *Chunk) EmbeddingText() string {
	var parts []string
	for _, field := range []string{c.Title, c.Name, c.Description, c.Content} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, "\n")
}

// String renders the chunk generically, used as the formatter's last resort
// when no descriptive field pair matches.
func (c *Chunk) String() string {
	parts := []string{fmt.Sprintf("object_id=%s", c.ObjectID)}
	if c.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%s", c.Title))
	}
	if c.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%s", c.Name))
	}
	if c.Description != "" {
		parts = append(parts, fmt.Sprintf("description=%s", c.Description))
	}
	if c.Content != "" {
		parts = append(parts, fmt.Sprintf("content=%s", c.Content))
	}
	return fmt.Sprintf("%s{%s}", c.Collection, strings.Join(parts, " "))
}
