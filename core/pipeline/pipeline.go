package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/mentis/model"
)

// ChunkFunc is a function that splits entry text into raw text chunks.
type ChunkFunc func(text string) ([]string, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// ExtractFunc pulls categorized items and the connections between them out
// of one diary entry.
type ExtractFunc func(ctx context.Context, text string) (*Extraction, error)

// SummarizeFunc condenses one diary entry into a short summary.
type SummarizeFunc func(ctx context.Context, text string) (string, error)

// Extraction holds what an extractor found in a single entry.
type Extraction struct {
	Items       []ExtractedItem
	Connections []ExtractedConnection
}

// ExtractedItem is one categorized object before it becomes a chunk.
// ObjectID may be empty, Process assigns a stable one derived from the
// entry ID.
type ExtractedItem struct {
	ObjectID    string                 `json:"object_id,omitempty"`
	Category    model.Category         `json:"category"`
	Title       string                 `json:"title,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Content     string                 `json:"content,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ExtractedConnection is a directed relation between two extracted items,
// referenced by object ID.
type ExtractedConnection struct {
	SourceID string               `json:"source_id"`
	TargetID string               `json:"target_id"`
	Type     model.ConnectionType `json:"type"`
}

// Pipeline combines chunking, embedding, extraction and summarization for
// entry ingestion. Extractor and Summarizer are optional; without them only
// raw text chunks are produced.
type Pipeline struct {
	Chunker    ChunkFunc
	Embedder   EmbedFunc
	Extractor  ExtractFunc   // Optional
	Summarizer SummarizeFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetExtractor sets the categorized item extraction function
func (p *Pipeline) SetExtractor(extractor ExtractFunc) {
	p.Extractor = extractor
}

// SetSummarizer sets the entry summarization function
func (p *Pipeline) SetSummarizer(summarizer SummarizeFunc) {
	p.Summarizer = summarizer
}

// ProcessingResult contains the chunks across all collections and the
// connections produced from one entry, ready to insert.
type ProcessingResult struct {
	Chunks      []*model.Chunk
	Connections []*model.Connection
}

// Process runs one diary entry through the pipeline. It always produces raw
// text chunks for the text collection, plus categorized chunks and
// connections when an extractor is set and a summary chunk when a summarizer
// is set. Extraction and summarization failures abort the whole entry so an
// ingest never half-lands.
func (p *Pipeline) Process(ctx context.Context, userID string, entryID string, text string) (*ProcessingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("entry text is empty")
	}
	if strings.TrimSpace(entryID) == "" {
		return nil, fmt.Errorf("entry id is empty")
	}

	result := &ProcessingResult{}

	textChunks, err := p.Chunker(text)
	if err != nil {
		return nil, fmt.Errorf("chunking entry: %w", err)
	}

	for i, content := range textChunks {
		embedding, err := p.Embedder(content)
		if err != nil {
			return nil, fmt.Errorf("embedding text chunk %d: %w", i, err)
		}

		result.Chunks = append(result.Chunks, &model.Chunk{
			ObjectID:   fmt.Sprintf("%s_chunk%d", entryID, i),
			Collection: model.CollectionText,
			UserID:     userID,
			Content:    content,
			Embedding:  embedding,
			Metadata:   model.Metadata{"entry_id": entryID},
		})
	}

	if p.Extractor != nil {
		extraction, err := p.Extractor(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("extracting entry: %w", err)
		}

		for i, item := range extraction.Items {
			if !item.Category.Valid() {
				continue
			}

			objectID := item.ObjectID
			if objectID == "" {
				objectID = fmt.Sprintf("%s_%s%d", entryID, strings.ToLower(string(item.Category)), i)
			}

			chunk := &model.Chunk{
				ObjectID:    objectID,
				Collection:  item.Category.CollectionName(),
				UserID:      userID,
				Title:       item.Title,
				Name:        item.Name,
				Description: item.Description,
				Content:     item.Content,
				Metadata:    model.Metadata{"entry_id": entryID},
			}
			for key, value := range item.Metadata {
				chunk.Metadata[key] = value
			}

			embedding, err := p.Embedder(chunk.EmbeddingText())
			if err != nil {
				return nil, fmt.Errorf("embedding %s item %q: %w", item.Category, objectID, err)
			}
			chunk.Embedding = embedding

			result.Chunks = append(result.Chunks, chunk)
		}

		for _, extracted := range extraction.Connections {
			if extracted.SourceID == "" || extracted.TargetID == "" {
				continue
			}
			result.Connections = append(result.Connections, &model.Connection{
				SourceID: extracted.SourceID,
				TargetID: extracted.TargetID,
				Type:     model.ParseConnectionType(string(extracted.Type)),
				UserID:   userID,
				Metadata: model.Metadata{"entry_id": entryID},
			})
		}
	}

	if p.Summarizer != nil {
		summary, err := p.Summarizer(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("summarizing entry: %w", err)
		}

		embedding, err := p.Embedder(summary)
		if err != nil {
			return nil, fmt.Errorf("embedding summary: %w", err)
		}

		result.Chunks = append(result.Chunks, &model.Chunk{
			ObjectID:   fmt.Sprintf("%s_summary", entryID),
			Collection: model.CollectionSummary,
			UserID:     userID,
			Content:    summary,
			Embedding:  embedding,
			Metadata:   model.Metadata{"entry_id": entryID},
		})
	}

	return result, nil
}
