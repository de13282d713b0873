package model

import "fmt"

// RewriteErrorPolicy decides what a retrieval does when query rewriting fails.
type RewriteErrorPolicy string

const (
	// RewriteAbort propagates the RewriteError and aborts the retrieval.
	RewriteAbort RewriteErrorPolicy = "abort"
	// RewriteFallbackOriginal continues with the original query targeted at
	// the configured fallback category.
	RewriteFallbackOriginal RewriteErrorPolicy = "fallback_original"
)

// QueryConfig represents configuration for one retrieval call.
type QueryConfig struct {
	// Vector search parameters
	PerCategoryLimit    int     `json:"per_category_limit"`
	MaxTotalResults     int     `json:"max_total_results"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Connection expansion parameters
	ExpandConnections  bool    `json:"expand_connections"`
	ConnectionDiscount float64 `json:"connection_discount"`

	// Rewrite failure handling. The default is RewriteAbort; falling back to
	// the original query is an explicit opt-in, not a hidden behavior.
	OnRewriteError   RewriteErrorPolicy `json:"on_rewrite_error"`
	FallbackCategory Category           `json:"fallback_category"`
}

// DefaultQueryConfig returns a sensible default configuration.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		PerCategoryLimit:    5,
		MaxTotalResults:     15,
		SimilarityThreshold: 0,
		ExpandConnections:   true,
		ConnectionDiscount:  0.5,
		OnRewriteError:      RewriteAbort,
		FallbackCategory:    CategoryEvent,
	}
}

// Validate checks the configuration for values that would make a retrieval
// misbehave silently.
func (c *QueryConfig) Validate() error {
	if c.PerCategoryLimit <= 0 {
		return fmt.Errorf("per category limit must be positive, got %d", c.PerCategoryLimit)
	}
	if c.MaxTotalResults <= 0 {
		return fmt.Errorf("max total results must be positive, got %d", c.MaxTotalResults)
	}
	if c.ConnectionDiscount <= 0 || c.ConnectionDiscount >= 1 {
		return fmt.Errorf("connection discount must be in (0, 1), got %f", c.ConnectionDiscount)
	}
	if c.OnRewriteError != RewriteAbort && c.OnRewriteError != RewriteFallbackOriginal {
		return fmt.Errorf("unknown rewrite error policy %q", c.OnRewriteError)
	}
	if c.OnRewriteError == RewriteFallbackOriginal && !c.FallbackCategory.Valid() {
		return fmt.Errorf("fallback category %q is not a known category", c.FallbackCategory)
	}
	return nil
}
