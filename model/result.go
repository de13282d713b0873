package model

import "encoding/json"

// ScoredResult represents a chunk retrieved by a query together with its
// relevance score. Higher means more relevant; no fixed range is guaranteed
// across categories.
type ScoredResult struct {
	Chunk           *Chunk          `json:"chunk"`
	Score           float64         `json:"score"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method"`
}

// ResultSet maps categories to their ordered scored results. Category order
// is the order categories were first populated, which later stages rely on
// as a truncation tie-break. A ResultSet lives for a single retrieval call.
type ResultSet struct {
	order   []Category
	results map[Category][]ScoredResult
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{
		results: map[Category][]ScoredResult{},
	}
}

// Append adds results to a category, registering the category on first use.
func (r *ResultSet) Append(category Category, results ...ScoredResult) {
	if _, ok := r.results[category]; !ok {
		r.order = append(r.order, category)
	}
	r.results[category] = append(r.results[category], results...)
}

// Replace swaps a category's results, keeping its position in the order.
func (r *ResultSet) Replace(category Category, results []ScoredResult) {
	if _, ok := r.results[category]; !ok {
		r.order = append(r.order, category)
	}
	r.results[category] = results
}

// Categories returns the categories in insertion order.
func (r *ResultSet) Categories() []Category {
	return r.order
}

// Results returns the scored results for a category.
func (r *ResultSet) Results(category Category) []ScoredResult {
	return r.results[category]
}

// Contains reports whether a category already holds the given object ID.
func (r *ResultSet) Contains(category Category, objectID string) bool {
	for _, result := range r.results[category] {
		if result.Chunk != nil && result.Chunk.ObjectID == objectID {
			return true
		}
	}
	return false
}

// MarshalJSON renders the result set as a category keyed object.
func (r *ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.results)
}

// Len returns the total number of results across all categories.
func (r *ResultSet) Len() int {
	total := 0
	for _, results := range r.results {
		total += len(results)
	}
	return total
}

// RetrievalOutput is the full outcome of one retrieval call: the per-category
// results plus the rewritten queries that produced them.
type RetrievalOutput struct {
	Results     *ResultSet       `json:"results"`
	QueriesUsed []RewrittenQuery `json:"queries_used"`
}
