package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/siherrmann/mentis/llm"
	"github.com/siherrmann/mentis/model"
)

// Rewriter turns one user query into targeted (query, category) pairs. The
// returned sequence is ordered and non-empty; repeating a category with a
// different phrasing is valid fan-out.
type Rewriter interface {
	Rewrite(ctx context.Context, query string) ([]model.RewrittenQuery, error)
}

// RewriterFunc adapts a plain function to the Rewriter interface.
type RewriterFunc func(ctx context.Context, query string) ([]model.RewrittenQuery, error)

func (f RewriterFunc) Rewrite(ctx context.Context, query string) ([]model.RewrittenQuery, error) {
	return f(ctx, query)
}

const rewritePromptTemplate = `You are a query planner for a personal diary search system.
The diary is indexed into these categories:
Event, Person, Emotion, Thought, Problem, Achievement, FutureIntention.

Rewrite the user question into one or more search queries, each targeted at the
category most likely to hold the answer. Use several queries when the question
spans categories, the same category may appear more than once with different
phrasings.

Respond with a single JSON array and nothing else:
[
  {"query": "<rewritten search query>", "category": "<category>"}
]

User question:
%s`

// LLMRewriter asks the language model to map a question onto category
// targeted search queries. Entries with an unknown category are dropped, a
// reply with no usable entry is an error.
type LLMRewriter struct {
	client llm.Client
}

// NewLLMRewriter creates a rewriter backed by the given language model client.
func NewLLMRewriter(client llm.Client) *LLMRewriter {
	return &LLMRewriter{client: client}
}

func (r *LLMRewriter) Rewrite(ctx context.Context, query string) ([]model.RewrittenQuery, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.RewriteError{Query: query, Err: fmt.Errorf("query is empty")}
	}

	reply, err := r.client.Generate(ctx, fmt.Sprintf(rewritePromptTemplate, query))
	if err != nil {
		return nil, &model.RewriteError{Query: query, Err: err}
	}

	var raw []struct {
		Query    string `json:"query"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &raw); err != nil {
		return nil, &model.RewriteError{Query: query, Err: fmt.Errorf("parsing rewrite reply: %w", err)}
	}

	var queries []model.RewrittenQuery
	for _, entry := range raw {
		category, err := model.ParseCategory(entry.Category)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(entry.Query)
		if text == "" {
			continue
		}
		queries = append(queries, model.RewrittenQuery{Query: text, Category: category})
	}

	if len(queries) == 0 {
		return nil, &model.RewriteError{Query: query, Err: fmt.Errorf("no usable rewritten queries in model reply")}
	}
	return queries, nil
}
