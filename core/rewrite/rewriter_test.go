package rewrite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/siherrmann/mentis/llm"
	"github.com/siherrmann/mentis/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMRewriter(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid rewrite with multiple categories", func(t *testing.T) {
		client := llm.NewStubClient(`[
			{"query": "birthday gifts received", "category": "Event"},
			{"query": "people at the birthday", "category": "Person"}
		]`)
		rewriter := NewLLMRewriter(client)

		queries, err := rewriter.Rewrite(ctx, "What gifts did Anne receive for her birthday?")

		require.NoError(t, err)
		require.Equal(t, 2, len(queries))
		assert.Equal(t, "birthday gifts received", queries[0].Query)
		assert.Equal(t, model.CategoryEvent, queries[0].Category)
		assert.Equal(t, model.CategoryPerson, queries[1].Category)
	})

	t.Run("Prompt contains the user question", func(t *testing.T) {
		client := llm.NewStubClient(`[{"query": "school feelings", "category": "Emotion"}]`)
		rewriter := NewLLMRewriter(client)

		_, err := rewriter.Rewrite(ctx, "What emotions did Anne express about school?")

		require.NoError(t, err)
		require.Equal(t, 1, len(client.Prompts))
		assert.Contains(t, client.Prompts[0], "What emotions did Anne express about school?")
		assert.Contains(t, client.Prompts[0], "FutureIntention")
	})

	t.Run("Duplicate categories are valid fan-out", func(t *testing.T) {
		client := llm.NewStubClient(`[
			{"query": "argument with mother", "category": "Event"},
			{"query": "conflict at home", "category": "Event"}
		]`)
		rewriter := NewLLMRewriter(client)

		queries, err := rewriter.Rewrite(ctx, "Tell me about Anne's relationship with her mother")

		require.NoError(t, err)
		require.Equal(t, 2, len(queries))
		assert.Equal(t, queries[0].Category, queries[1].Category)
		assert.NotEqual(t, queries[0].Query, queries[1].Query)
	})

	t.Run("Handles fenced JSON replies", func(t *testing.T) {
		client := llm.NewStubClient("```json\n[{\"query\": \"recent worries\", \"category\": \"Problem\"}]\n```")
		rewriter := NewLLMRewriter(client)

		queries, err := rewriter.Rewrite(ctx, "What is Anne worried about?")

		require.NoError(t, err)
		require.Equal(t, 1, len(queries))
		assert.Equal(t, model.CategoryProblem, queries[0].Category)
	})

	t.Run("Unknown categories are dropped", func(t *testing.T) {
		client := llm.NewStubClient(`[
			{"query": "weather that day", "category": "Weather"},
			{"query": "hiding in the annex", "category": "Event"}
		]`)
		rewriter := NewLLMRewriter(client)

		queries, err := rewriter.Rewrite(ctx, "Where was Anne hiding?")

		require.NoError(t, err)
		require.Equal(t, 1, len(queries))
		assert.Equal(t, model.CategoryEvent, queries[0].Category)
	})

	t.Run("Entries with empty query text are dropped", func(t *testing.T) {
		client := llm.NewStubClient(`[
			{"query": "   ", "category": "Event"},
			{"query": "first day of school", "category": "Event"}
		]`)
		rewriter := NewLLMRewriter(client)

		queries, err := rewriter.Rewrite(ctx, "How was school?")

		require.NoError(t, err)
		require.Equal(t, 1, len(queries))
		assert.Equal(t, "first day of school", queries[0].Query)
	})

	t.Run("Error when no usable entries remain", func(t *testing.T) {
		client := llm.NewStubClient(`[{"query": "something", "category": "Nonsense"}]`)
		rewriter := NewLLMRewriter(client)

		_, err := rewriter.Rewrite(ctx, "A question.")

		assert.Error(t, err)
		var rewriteError *model.RewriteError
		require.True(t, errors.As(err, &rewriteError), "Expected a RewriteError")
		assert.Contains(t, rewriteError.Error(), "no usable rewritten queries")
	})

	t.Run("Error on empty query", func(t *testing.T) {
		client := llm.NewStubClient(`[]`)
		rewriter := NewLLMRewriter(client)

		_, err := rewriter.Rewrite(ctx, "   ")

		assert.Error(t, err)
		var rewriteError *model.RewriteError
		assert.True(t, errors.As(err, &rewriteError), "Expected a RewriteError")
		assert.Empty(t, client.Prompts, "Empty queries should not reach the model")
	})

	t.Run("Error from client is wrapped as RewriteError", func(t *testing.T) {
		client := &llm.StubClient{Err: fmt.Errorf("connection refused")}
		rewriter := NewLLMRewriter(client)

		_, err := rewriter.Rewrite(ctx, "A question.")

		assert.Error(t, err)
		var rewriteError *model.RewriteError
		require.True(t, errors.As(err, &rewriteError), "Expected a RewriteError")
		assert.Equal(t, "A question.", rewriteError.Query)
		assert.Contains(t, errors.Unwrap(rewriteError).Error(), "connection refused")
	})

	t.Run("Error on unparseable reply", func(t *testing.T) {
		client := llm.NewStubClient("Sorry, I cannot help with that.")
		rewriter := NewLLMRewriter(client)

		_, err := rewriter.Rewrite(ctx, "A question.")

		assert.Error(t, err)
		var rewriteError *model.RewriteError
		require.True(t, errors.As(err, &rewriteError), "Expected a RewriteError")
		assert.Contains(t, rewriteError.Error(), "parsing rewrite reply")
	})
}

func TestRewriterFunc(t *testing.T) {
	t.Run("Function adapts to the interface", func(t *testing.T) {
		var rewriter Rewriter = RewriterFunc(func(ctx context.Context, query string) ([]model.RewrittenQuery, error) {
			return []model.RewrittenQuery{{Query: query, Category: model.CategoryEvent}}, nil
		})

		queries, err := rewriter.Rewrite(context.Background(), "unchanged")

		require.NoError(t, err)
		require.Equal(t, 1, len(queries))
		assert.Equal(t, "unchanged", queries[0].Query)
	})
}
