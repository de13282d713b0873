package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/siherrmann/mentis/llm"
	"github.com/siherrmann/mentis/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid extraction with items and connections", func(t *testing.T) {
		client := llm.NewStubClient(`{
			"items": [
				{"object_id": "birthday", "category": "Event", "title": "Birthday party", "description": "Celebrated my birthday"},
				{"object_id": "anna", "category": "Person", "name": "Anna", "description": "My sister"}
			],
			"connections": [
				{"source_id": "birthday", "target_id": "anna", "type": "involves"}
			]
		}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Celebrated my birthday with Anna.")

		require.NoError(t, err)
		require.Equal(t, 2, len(extraction.Items))
		require.Equal(t, 1, len(extraction.Connections))

		assert.Equal(t, "birthday", extraction.Items[0].ObjectID)
		assert.Equal(t, model.CategoryEvent, extraction.Items[0].Category)
		assert.Equal(t, "Birthday party", extraction.Items[0].Title)
		assert.Equal(t, model.CategoryPerson, extraction.Items[1].Category)
		assert.Equal(t, "Anna", extraction.Items[1].Name)

		assert.Equal(t, "birthday", extraction.Connections[0].SourceID)
		assert.Equal(t, "anna", extraction.Connections[0].TargetID)
		assert.Equal(t, model.ConnectionTypeInvolves, extraction.Connections[0].Type)
	})

	t.Run("Prompt contains the entry text", func(t *testing.T) {
		client := llm.NewStubClient(`{"items": [], "connections": []}`)
		extractor := LLMExtractor(client)

		_, err := extractor(ctx, "Went swimming in the lake.")

		require.NoError(t, err)
		require.Equal(t, 1, len(client.Prompts))
		assert.Contains(t, client.Prompts[0], "Went swimming in the lake.")
		assert.Contains(t, client.Prompts[0], "FutureIntention")
	})

	t.Run("Handles fenced JSON replies", func(t *testing.T) {
		client := llm.NewStubClient("```json\n{\"items\": [{\"category\": \"Emotion\", \"name\": \"Joy\"}], \"connections\": []}\n```")
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Felt joyful.")

		require.NoError(t, err)
		require.Equal(t, 1, len(extraction.Items))
		assert.Equal(t, model.CategoryEmotion, extraction.Items[0].Category)
	})

	t.Run("Category names are matched case-insensitively", func(t *testing.T) {
		client := llm.NewStubClient(`{"items": [{"category": "futureintention", "content": "Learn Go"}], "connections": []}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "I want to learn Go.")

		require.NoError(t, err)
		require.Equal(t, 1, len(extraction.Items))
		assert.Equal(t, model.CategoryFutureIntention, extraction.Items[0].Category)
	})

	t.Run("Unknown categories are dropped", func(t *testing.T) {
		client := llm.NewStubClient(`{
			"items": [
				{"category": "Dream", "content": "Flying over mountains"},
				{"category": "Thought", "content": "Should call mom"}
			],
			"connections": []
		}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Dreamt of flying. Should call mom.")

		require.NoError(t, err)
		require.Equal(t, 1, len(extraction.Items))
		assert.Equal(t, model.CategoryThought, extraction.Items[0].Category)
	})

	t.Run("Fields are trimmed", func(t *testing.T) {
		client := llm.NewStubClient(`{"items": [{"object_id": " anna ", "category": "Person", "name": "  Anna  "}], "connections": []}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Met Anna.")

		require.NoError(t, err)
		require.Equal(t, 1, len(extraction.Items))
		assert.Equal(t, "anna", extraction.Items[0].ObjectID)
		assert.Equal(t, "Anna", extraction.Items[0].Name)
	})

	t.Run("Unknown connection types fall back to relates_to", func(t *testing.T) {
		client := llm.NewStubClient(`{
			"items": [],
			"connections": [
				{"source_id": "a", "target_id": "b", "type": "Leads To"},
				{"source_id": "a", "target_id": "c", "type": "triggered_by"}
			]
		}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Some entry.")

		require.NoError(t, err)
		require.Equal(t, 2, len(extraction.Connections))
		assert.Equal(t, model.ConnectionTypeLeadsTo, extraction.Connections[0].Type)
		assert.Equal(t, model.ConnectionTypeRelatesTo, extraction.Connections[1].Type)
	})

	t.Run("Connections with empty endpoints are dropped", func(t *testing.T) {
		client := llm.NewStubClient(`{
			"items": [],
			"connections": [
				{"source_id": "", "target_id": "b", "type": "involves"},
				{"source_id": "a", "target_id": "  ", "type": "involves"}
			]
		}`)
		extractor := LLMExtractor(client)

		extraction, err := extractor(ctx, "Some entry.")

		require.NoError(t, err)
		assert.Empty(t, extraction.Connections)
	})

	t.Run("Error from client is wrapped", func(t *testing.T) {
		client := &llm.StubClient{Err: fmt.Errorf("connection refused")}
		extractor := LLMExtractor(client)

		_, err := extractor(ctx, "Some entry.")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "extraction request failed")
	})

	t.Run("Error on unparseable reply", func(t *testing.T) {
		client := llm.NewStubClient("I could not find any objects, sorry!")
		extractor := LLMExtractor(client)

		_, err := extractor(ctx, "Some entry.")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "parsing extraction reply")
	})
}

func TestLLMSummarizer(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid summary", func(t *testing.T) {
		client := llm.NewStubClient("A quiet day spent reading at home.")
		summarizer := LLMSummarizer(client)

		summary, err := summarizer(ctx, "Stayed home all day. Read a book about sailing.")

		require.NoError(t, err)
		assert.Equal(t, "A quiet day spent reading at home.", summary)
		require.Equal(t, 1, len(client.Prompts))
		assert.Contains(t, client.Prompts[0], "Read a book about sailing.")
	})

	t.Run("Summary is trimmed", func(t *testing.T) {
		client := llm.NewStubClient("\n  A short summary.  \n")
		summarizer := LLMSummarizer(client)

		summary, err := summarizer(ctx, "Some entry.")

		require.NoError(t, err)
		assert.Equal(t, "A short summary.", summary)
	})

	t.Run("Error on empty summary", func(t *testing.T) {
		client := llm.NewStubClient("   ")
		summarizer := LLMSummarizer(client)

		_, err := summarizer(ctx, "Some entry.")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty summary")
	})

	t.Run("Error from client is wrapped", func(t *testing.T) {
		client := &llm.StubClient{Err: fmt.Errorf("connection refused")}
		summarizer := LLMSummarizer(client)

		_, err := summarizer(ctx, "Some entry.")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "summary request failed")
	})
}
