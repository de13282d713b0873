package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/model"
)

// SampleQueries returns the built-in evaluation queries used when no
// queries file exists.
func SampleQueries() []string {
	return []string{
		"What activities did the user do with friends?",
		"What work-related challenges did the user face?",
		"What emotions did the user express about family relationships?",
	}
}

// LoadQueries reads evaluation queries from a JSON file, either a bare array
// or an object with a "queries" key. A missing file falls back to the
// built-in sample queries.
func LoadQueries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return SampleQueries(), nil
	}
	if err != nil {
		return nil, helper.NewError("read queries file", err)
	}

	var bare []string
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Queries != nil {
		return wrapped.Queries, nil
	}

	return nil, fmt.Errorf("invalid queries file format in %s", path)
}

// RetrieverReport is what one retriever's evaluation produced.
type RetrieverReport struct {
	Retriever  string             `json:"retriever"`
	NumQueries int                `json:"num_queries"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Harness runs every adapter over the query set and scores the retrieved
// contexts.
type Harness struct {
	Adapters []Adapter
	Scorer   Scorer
	TopK     int
	log      *slog.Logger
}

// NewHarness creates a harness over the given adapters and scorer.
func NewHarness(adapters []Adapter, scorer Scorer, topK int, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		Adapters: adapters,
		Scorer:   scorer,
		TopK:     topK,
		log:      logger,
	}
}

// Run evaluates every adapter. A retriever whose whole evaluation fails is
// reported as missing from the output, the run continues with the rest.
func (h *Harness) Run(ctx context.Context, queries []string) ([]*RetrieverReport, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("no evaluation queries")
	}

	reports := make([]*RetrieverReport, 0, len(h.Adapters))
	for _, adapter := range h.Adapters {
		report, err := h.evaluateAdapter(ctx, adapter, queries)
		if err != nil {
			h.log.Warn("Evaluation failed",
				slog.String("retriever", adapter.Name()),
				slog.Any("error", err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// evaluateAdapter builds the dataset for one retriever and scores it. A
// query whose retrieval errors or returns nothing is skipped, the dataset
// needs at least one valid entry.
func (h *Harness) evaluateAdapter(ctx context.Context, adapter Adapter, queries []string) (report *RetrieverReport, err error) {
	if setupErr := adapter.Setup(); setupErr != nil {
		return nil, helper.NewError("set up retriever", setupErr)
	}
	defer func() {
		if teardownErr := adapter.Teardown(); teardownErr != nil && err == nil {
			report = nil
			err = helper.NewError("tear down retriever", teardownErr)
		}
	}()

	var dataset []Sample
	for _, query := range queries {
		contexts, retrieveErr := adapter.Retrieve(ctx, query, h.TopK)
		if retrieveErr != nil {
			h.log.Warn("Skipping query",
				slog.String("retriever", adapter.Name()),
				slog.String("query", query),
				slog.Any("error", retrieveErr))
			continue
		}
		if len(contexts) == 0 {
			continue
		}
		dataset = append(dataset, Sample{Query: query, Contexts: contexts})
	}

	if len(dataset) == 0 {
		return nil, fmt.Errorf("no valid queries for retriever %s", adapter.Name())
	}

	result, scoreErr := h.Scorer.Score(ctx, dataset)
	if scoreErr != nil {
		return nil, helper.NewError("score retriever", scoreErr)
	}

	metrics := map[string]float64{}
	for _, name := range h.Scorer.Metrics() {
		value, ok := result.Metric(name)
		if !ok {
			extractionErr := &model.EvaluationExtractionError{Retriever: adapter.Name(), Metric: name}
			h.log.Warn("Metric extraction failed", slog.Any("error", extractionErr))
			value = 0
		}
		metrics[name] = value
	}

	return &RetrieverReport{
		Retriever:  adapter.Name(),
		NumQueries: len(dataset),
		Metrics:    metrics,
	}, nil
}

// WriteReports writes one results_<name>.json per retriever into dir,
// indented and overwriting previous runs.
func WriteReports(dir string, reports []*RetrieverReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return helper.NewError("create results directory", err)
	}

	for _, report := range reports {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return helper.NewError("marshal report", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("results_%s.json", report.Retriever))
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return helper.NewError("write report", err)
		}
	}
	return nil
}

// Summary renders the printed results table.
func Summary(reports []*RetrieverReport) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 80) + "\n")
	b.WriteString("RETRIEVAL EVALUATION SUMMARY\n")
	b.WriteString(strings.Repeat("=", 80) + "\n")
	b.WriteString(fmt.Sprintf("%-15s %-8s %s\n", "Retriever", "Queries", "Metrics"))
	b.WriteString(strings.Repeat("-", 60) + "\n")

	for _, report := range reports {
		b.WriteString(fmt.Sprintf("%-15s %-8d %s\n", report.Retriever, report.NumQueries, formatMetrics(report.Metrics)))
	}
	return b.String()
}

func formatMetrics(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, metrics[name]))
	}
	return strings.Join(parts, " ")
}
