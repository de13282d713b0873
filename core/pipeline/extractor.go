package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/siherrmann/mentis/llm"
	"github.com/siherrmann/mentis/model"
)

const extractionPromptTemplate = `You are an information extraction system for a personal diary.
Extract the distinct objects mentioned in the diary entry below and classify each into exactly one category:
Event, Person, Emotion, Thought, Problem, Achievement, FutureIntention.

Also extract directed connections between the objects. Allowed connection types: involves, causes, relates_to, leads_to.

Respond with a single JSON object and nothing else:
{
  "items": [
    {"object_id": "<short_snake_case_id>", "category": "<category>", "title": "<for events and achievements>", "name": "<for persons and emotions>", "description": "<one sentence>", "content": "<for thoughts>"}
  ],
  "connections": [
    {"source_id": "<object_id>", "target_id": "<object_id>", "type": "<connection type>"}
  ]
}

Only fill the fields that fit the category, leave the others out.

Diary entry:
%s`

const summaryPromptTemplate = `Summarize the following diary entry in two to three sentences.
Keep concrete names, places and outcomes. Respond with the summary only.

Diary entry:
%s`

// rawExtraction mirrors the JSON shape the model is asked for. Categories
// and connection types arrive as free-form strings and are validated before
// they become part of an Extraction.
type rawExtraction struct {
	Items []struct {
		ObjectID    string                 `json:"object_id"`
		Category    string                 `json:"category"`
		Title       string                 `json:"title"`
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		Content     string                 `json:"content"`
		Metadata    map[string]interface{} `json:"metadata"`
	} `json:"items"`
	Connections []struct {
		SourceID string `json:"source_id"`
		TargetID string `json:"target_id"`
		Type     string `json:"type"`
	} `json:"connections"`
}

// LLMExtractor creates an extractor that asks the language model for
// categorized items and connections as strict JSON. Items with an unknown
// category are dropped, unknown connection types fall back to relates_to.
func LLMExtractor(client llm.Client) ExtractFunc {
	return func(ctx context.Context, text string) (*Extraction, error) {
		reply, err := client.Generate(ctx, fmt.Sprintf(extractionPromptTemplate, text))
		if err != nil {
			return nil, fmt.Errorf("extraction request failed: %w", err)
		}

		var raw rawExtraction
		if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &raw); err != nil {
			return nil, fmt.Errorf("parsing extraction reply: %w", err)
		}

		extraction := &Extraction{}
		for _, item := range raw.Items {
			category, err := model.ParseCategory(item.Category)
			if err != nil {
				continue
			}
			extraction.Items = append(extraction.Items, ExtractedItem{
				ObjectID:    strings.TrimSpace(item.ObjectID),
				Category:    category,
				Title:       strings.TrimSpace(item.Title),
				Name:        strings.TrimSpace(item.Name),
				Description: strings.TrimSpace(item.Description),
				Content:     strings.TrimSpace(item.Content),
				Metadata:    item.Metadata,
			})
		}
		for _, connection := range raw.Connections {
			if strings.TrimSpace(connection.SourceID) == "" || strings.TrimSpace(connection.TargetID) == "" {
				continue
			}
			extraction.Connections = append(extraction.Connections, ExtractedConnection{
				SourceID: strings.TrimSpace(connection.SourceID),
				TargetID: strings.TrimSpace(connection.TargetID),
				Type:     model.ParseConnectionType(connection.Type),
			})
		}

		return extraction, nil
	}
}

// LLMSummarizer creates a summarizer backed by the language model.
func LLMSummarizer(client llm.Client) SummarizeFunc {
	return func(ctx context.Context, text string) (string, error) {
		reply, err := client.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, text))
		if err != nil {
			return "", fmt.Errorf("summary request failed: %w", err)
		}

		summary := strings.TrimSpace(reply)
		if summary == "" {
			return "", fmt.Errorf("model returned an empty summary")
		}
		return summary, nil
	}
}
