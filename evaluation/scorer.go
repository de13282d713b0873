package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/siherrmann/mentis/llm"
)

// Sample is one evaluated query with the contexts a retriever produced
// for it.
type Sample struct {
	Query    string
	Contexts []string
}

// Result holds the metric values one scorer produced for a dataset. Values
// are read through the typed accessor, never parsed out of a printed
// representation.
type Result struct {
	metrics map[string]float64
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{metrics: map[string]float64{}}
}

// Set stores one metric value.
func (r *Result) Set(name string, value float64) {
	r.metrics[name] = value
}

// Metric returns one metric value and whether it was set.
func (r *Result) Metric(name string) (float64, bool) {
	value, ok := r.metrics[name]
	return value, ok
}

// Names returns the set metric names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scorer judges the retrieved contexts for a dataset of queries. Metrics
// declares the metric names a Score result is expected to carry.
type Scorer interface {
	Name() string
	Metrics() []string
	Score(ctx context.Context, dataset []Sample) (*Result, error)
}

// MetricContextRelevance is the metric the shipped scorer reports, the
// judged relevance of the retrieved contexts averaged over the dataset.
const MetricContextRelevance = "context_relevance"

const relevancePromptTemplate = `You judge how relevant retrieved diary information is to a question.

Question: %s

Retrieved information:
%s

Reply with a JSON object {"relevance": <number between 0.0 and 1.0>} and nothing else.`

// LLMScorer judges context relevance with a language model. Samples whose
// judgement cannot be parsed are skipped; the score errors only when no
// sample could be judged.
type LLMScorer struct {
	client llm.Client
}

func NewLLMScorer(client llm.Client) *LLMScorer {
	return &LLMScorer{client: client}
}

func (s *LLMScorer) Name() string { return "llm_judge" }

func (s *LLMScorer) Metrics() []string { return []string{MetricContextRelevance} }

func (s *LLMScorer) Score(ctx context.Context, dataset []Sample) (*Result, error) {
	var sum float64
	scored := 0

	for _, sample := range dataset {
		prompt := fmt.Sprintf(relevancePromptTemplate, sample.Query, strings.Join(sample.Contexts, "\n"))
		reply, err := s.client.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("judging query %q: %w", sample.Query, err)
		}

		var judgement struct {
			Relevance float64 `json:"relevance"`
		}
		if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &judgement); err != nil {
			continue
		}

		sum += clamp01(judgement.Relevance)
		scored++
	}

	if scored == 0 {
		return nil, fmt.Errorf("no sample judgement could be parsed")
	}

	result := NewResult()
	result.Set(MetricContextRelevance, sum/float64(scored))
	return result, nil
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
