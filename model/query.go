package model

// RewrittenQuery is one (query text, target category) pair produced by the
// query rewriter from an original user query. Multiple rewritten queries may
// share a category or differ only in phrasing.
type RewrittenQuery struct {
	Query    string   `json:"query"`
	Category Category `json:"category"`
}
