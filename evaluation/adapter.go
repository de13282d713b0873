package evaluation

import (
	"context"

	"github.com/siherrmann/mentis/core/format"
	"github.com/siherrmann/mentis/model"
)

// Adapter exposes one retriever to the harness. Setup and Teardown pair
// resource acquisition with release; the harness calls Teardown on every
// exit path.
type Adapter interface {
	Name() string
	Setup() error
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
	Teardown() error
}

// Searcher is the slice of the root facade the shipped adapters need.
type Searcher interface {
	Retrieve(ctx context.Context, query string) (*model.RetrievalOutput, error)
	SimpleSearch(ctx context.Context, query string, limit int) ([]string, error)
	SummarySearch(ctx context.Context, query string, limit int) ([]string, error)
}

// AllAdapters returns the shipped adapters over one searcher.
func AllAdapters(searcher Searcher) []Adapter {
	return []Adapter{
		NewSemanticAdapter(searcher),
		NewSimpleRagAdapter(searcher),
		NewSummaryRagAdapter(searcher),
	}
}

// SemanticAdapter evaluates the full retrieval path, query rewriting and
// category targeted search included.
type SemanticAdapter struct {
	searcher Searcher
}

func NewSemanticAdapter(searcher Searcher) *SemanticAdapter {
	return &SemanticAdapter{searcher: searcher}
}

func (a *SemanticAdapter) Name() string { return "semantic" }

func (a *SemanticAdapter) Setup() error { return nil }

func (a *SemanticAdapter) Teardown() error { return nil }

// Retrieve renders every scored result as one line, category order first,
// score order within a category, truncated to topK.
func (a *SemanticAdapter) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	output, err := a.searcher.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, category := range output.Results.Categories() {
		for _, result := range output.Results.Results(category) {
			lines = append(lines, format.RenderChunk(result.Chunk))
		}
	}
	if topK > 0 && len(lines) > topK {
		lines = lines[:topK]
	}
	return lines, nil
}

// SimpleRagAdapter evaluates plain similarity search over the raw text
// chunks.
type SimpleRagAdapter struct {
	searcher Searcher
}

func NewSimpleRagAdapter(searcher Searcher) *SimpleRagAdapter {
	return &SimpleRagAdapter{searcher: searcher}
}

func (a *SimpleRagAdapter) Name() string { return "simple_rag" }

func (a *SimpleRagAdapter) Setup() error { return nil }

func (a *SimpleRagAdapter) Teardown() error { return nil }

func (a *SimpleRagAdapter) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	return a.searcher.SimpleSearch(ctx, query, topK)
}

// SummaryRagAdapter evaluates plain similarity search over the entry
// summaries.
type SummaryRagAdapter struct {
	searcher Searcher
}

func NewSummaryRagAdapter(searcher Searcher) *SummaryRagAdapter {
	return &SummaryRagAdapter{searcher: searcher}
}

func (a *SummaryRagAdapter) Name() string { return "summary_rag" }

func (a *SummaryRagAdapter) Setup() error { return nil }

func (a *SummaryRagAdapter) Teardown() error { return nil }

func (a *SummaryRagAdapter) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	return a.searcher.SummarySearch(ctx, query, topK)
}
