package model

import "fmt"

// RewriteError signals that query rewriting failed. The caller decides
// between aborting the retrieval and falling back to the original query,
// per QueryConfig.OnRewriteError.
type RewriteError struct {
	Query string
	Err   error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewriting query %q: %v", e.Query, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}

// SearchError signals that one (query, category) similarity search failed.
// It is recorded as zero results for that scope only and never aborts the
// surrounding retrieval.
type SearchError struct {
	Query    string
	Category Category
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("searching %s for %q: %v", e.Category, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// ConnectionLookupError signals that resolving one connection target failed
// or that the target was missing from every collection. Always non-fatal:
// logged and counted, never surfaced to the caller.
type ConnectionLookupError struct {
	SourceID string
	TargetID string
	Err      error
}

func (e *ConnectionLookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection %s -> %s: target not found in any collection", e.SourceID, e.TargetID)
	}
	return fmt.Sprintf("connection %s -> %s: %v", e.SourceID, e.TargetID, e.Err)
}

func (e *ConnectionLookupError) Unwrap() error {
	return e.Err
}

// GenerationError signals that the answer-generation call failed. It is
// converted to an inline error string in place of an answer; the session
// continues.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating answer: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// EvaluationExtractionError signals that the scorer's result could not be
// read through its typed accessor. The affected retriever reports zero-valued
// metrics and the evaluation run continues.
type EvaluationExtractionError struct {
	Retriever string
	Metric    string
}

func (e *EvaluationExtractionError) Error() string {
	return fmt.Sprintf("extracting metric %q for retriever %q", e.Metric, e.Retriever)
}
