package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name          string
	lines         map[string][]string
	retrieveErr   map[string]error
	setupErr      error
	teardownErr   error
	setupCalls    int
	teardownCalls int
	lastTopK      int
}

func newStubAdapter(name string) *stubAdapter {
	return &stubAdapter{
		name:        name,
		lines:       map[string][]string{},
		retrieveErr: map[string]error{},
	}
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Setup() error {
	a.setupCalls++
	return a.setupErr
}

func (a *stubAdapter) Teardown() error {
	a.teardownCalls++
	return a.teardownErr
}

func (a *stubAdapter) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	a.lastTopK = topK
	if err := a.retrieveErr[query]; err != nil {
		return nil, err
	}
	return a.lines[query], nil
}

type stubScorer struct {
	result   *Result
	err      error
	metrics  []string
	datasets [][]Sample
}

func (s *stubScorer) Name() string { return "stub" }

func (s *stubScorer) Metrics() []string { return s.metrics }

func (s *stubScorer) Score(ctx context.Context, dataset []Sample) (*Result, error) {
	s.datasets = append(s.datasets, dataset)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func relevanceScorer(value float64) *stubScorer {
	result := NewResult()
	result.Set(MetricContextRelevance, value)
	return &stubScorer{result: result, metrics: []string{MetricContextRelevance}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadQueries(t *testing.T) {
	t.Run("Bare array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.json")
		require.NoError(t, os.WriteFile(path, []byte(`["first query", "second query"]`), 0o644))

		queries, err := LoadQueries(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"first query", "second query"}, queries)
	})

	t.Run("Object with queries key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"queries": ["only query"]}`), 0o644))

		queries, err := LoadQueries(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"only query"}, queries)
	})

	t.Run("Missing file falls back to samples", func(t *testing.T) {
		queries, err := LoadQueries(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, SampleQueries(), queries)
		assert.NotEmpty(t, queries)
	})

	t.Run("Unusable format errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"foo": 1}`), 0o644))

		_, err := LoadQueries(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid queries file format")
	})

	t.Run("Broken JSON errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.json")
		require.NoError(t, os.WriteFile(path, []byte(`[unterminated`), 0o644))

		_, err := LoadQueries(path)
		require.Error(t, err)
	})
}

func TestHarnessRun(t *testing.T) {
	queries := []string{"q1", "q2"}

	t.Run("Reports every adapter", func(t *testing.T) {
		first := newStubAdapter("semantic")
		first.lines["q1"] = []string{"context a"}
		first.lines["q2"] = []string{"context b"}
		second := newStubAdapter("simple_rag")
		second.lines["q1"] = []string{"context c"}
		second.lines["q2"] = []string{"context d"}

		harness := NewHarness([]Adapter{first, second}, relevanceScorer(0.6), 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		require.Len(t, reports, 2)

		assert.Equal(t, "semantic", reports[0].Retriever)
		assert.Equal(t, 2, reports[0].NumQueries)
		assert.Equal(t, map[string]float64{MetricContextRelevance: 0.6}, reports[0].Metrics)
		assert.Equal(t, "simple_rag", reports[1].Retriever)

		assert.Equal(t, 5, first.lastTopK, "TopK should reach the adapter")
		assert.Equal(t, 1, first.setupCalls)
		assert.Equal(t, 1, first.teardownCalls)
	})

	t.Run("Failing query is skipped for that adapter only", func(t *testing.T) {
		adapter := newStubAdapter("semantic")
		adapter.retrieveErr["q1"] = fmt.Errorf("store down")
		adapter.lines["q2"] = []string{"context"}

		scorer := relevanceScorer(0.5)
		harness := NewHarness([]Adapter{adapter}, scorer, 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		require.Len(t, reports, 1)

		assert.Equal(t, 1, reports[0].NumQueries)
		require.Len(t, scorer.datasets, 1)
		require.Len(t, scorer.datasets[0], 1)
		assert.Equal(t, "q2", scorer.datasets[0][0].Query)
		assert.Equal(t, []string{"context"}, scorer.datasets[0][0].Contexts)
	})

	t.Run("Empty retrievals are skipped", func(t *testing.T) {
		adapter := newStubAdapter("semantic")
		adapter.lines["q2"] = []string{"context"}

		harness := NewHarness([]Adapter{adapter}, relevanceScorer(0.5), 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, 1, reports[0].NumQueries)
	})

	t.Run("Adapter without any valid query is dropped, run continues", func(t *testing.T) {
		broken := newStubAdapter("semantic")
		working := newStubAdapter("simple_rag")
		working.lines["q1"] = []string{"context"}
		working.lines["q2"] = []string{"context"}

		harness := NewHarness([]Adapter{broken, working}, relevanceScorer(0.5), 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "simple_rag", reports[0].Retriever)

		assert.Equal(t, 1, broken.teardownCalls, "Teardown must run even without valid queries")
	})

	t.Run("Teardown runs when scoring fails", func(t *testing.T) {
		adapter := newStubAdapter("semantic")
		adapter.lines["q1"] = []string{"context"}
		adapter.lines["q2"] = []string{"context"}
		scorer := &stubScorer{err: fmt.Errorf("judge unreachable"), metrics: []string{MetricContextRelevance}}

		harness := NewHarness([]Adapter{adapter}, scorer, 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		assert.Empty(t, reports)
		assert.Equal(t, 1, adapter.teardownCalls)
	})

	t.Run("Setup failure drops the adapter without teardown", func(t *testing.T) {
		adapter := newStubAdapter("semantic")
		adapter.setupErr = fmt.Errorf("no database")

		harness := NewHarness([]Adapter{adapter}, relevanceScorer(0.5), 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		assert.Empty(t, reports)
		assert.Equal(t, 0, adapter.teardownCalls)
	})

	t.Run("Metric accessor miss reports zero and continues", func(t *testing.T) {
		adapter := newStubAdapter("semantic")
		adapter.lines["q1"] = []string{"context"}
		adapter.lines["q2"] = []string{"context"}
		scorer := &stubScorer{result: NewResult(), metrics: []string{MetricContextRelevance}}

		harness := NewHarness([]Adapter{adapter}, scorer, 5, discardLogger())
		reports, err := harness.Run(context.Background(), queries)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, map[string]float64{MetricContextRelevance: 0}, reports[0].Metrics)
	})

	t.Run("No queries errors", func(t *testing.T) {
		harness := NewHarness(nil, relevanceScorer(0.5), 5, discardLogger())
		_, err := harness.Run(context.Background(), nil)
		require.Error(t, err)
	})
}

func TestWriteReports(t *testing.T) {
	t.Run("Writes one file per retriever", func(t *testing.T) {
		dir := t.TempDir()
		reports := []*RetrieverReport{
			{Retriever: "semantic", NumQueries: 3, Metrics: map[string]float64{MetricContextRelevance: 0.61}},
			{Retriever: "simple_rag", NumQueries: 2, Metrics: map[string]float64{MetricContextRelevance: 0.42}},
		}

		require.NoError(t, WriteReports(dir, reports))

		data, err := os.ReadFile(filepath.Join(dir, "results_semantic.json"))
		require.NoError(t, err)

		loaded := &RetrieverReport{}
		require.NoError(t, json.Unmarshal(data, loaded))
		assert.Equal(t, "semantic", loaded.Retriever)
		assert.Equal(t, 3, loaded.NumQueries)
		assert.Equal(t, 0.61, loaded.Metrics[MetricContextRelevance])

		_, err = os.Stat(filepath.Join(dir, "results_simple_rag.json"))
		assert.NoError(t, err)
	})

	t.Run("Overwrites previous runs", func(t *testing.T) {
		dir := t.TempDir()
		first := []*RetrieverReport{{Retriever: "semantic", NumQueries: 1, Metrics: map[string]float64{MetricContextRelevance: 0.1}}}
		second := []*RetrieverReport{{Retriever: "semantic", NumQueries: 5, Metrics: map[string]float64{MetricContextRelevance: 0.9}}}

		require.NoError(t, WriteReports(dir, first))
		require.NoError(t, WriteReports(dir, second))

		data, err := os.ReadFile(filepath.Join(dir, "results_semantic.json"))
		require.NoError(t, err)

		loaded := &RetrieverReport{}
		require.NoError(t, json.Unmarshal(data, loaded))
		assert.Equal(t, 5, loaded.NumQueries)
		assert.Equal(t, 0.9, loaded.Metrics[MetricContextRelevance])
	})

	t.Run("Creates the results directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "results")
		require.NoError(t, WriteReports(dir, []*RetrieverReport{{Retriever: "semantic", Metrics: map[string]float64{}}}))

		_, err := os.Stat(filepath.Join(dir, "results_semantic.json"))
		assert.NoError(t, err)
	})
}

func TestSummary(t *testing.T) {
	reports := []*RetrieverReport{
		{Retriever: "semantic", NumQueries: 3, Metrics: map[string]float64{MetricContextRelevance: 0.612}},
		{Retriever: "simple_rag", NumQueries: 2, Metrics: map[string]float64{MetricContextRelevance: 0.4, "context_precision": 0.8}},
	}

	summary := Summary(reports)
	assert.Contains(t, summary, "RETRIEVAL EVALUATION SUMMARY")
	assert.Contains(t, summary, "semantic")
	assert.Contains(t, summary, "context_relevance=0.612")
	assert.Contains(t, summary, "context_precision=0.800 context_relevance=0.400", "Metrics should print in sorted order")
}
