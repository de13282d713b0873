package retrieval

import (
	"context"

	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/model"
)

// SimpleSearch runs one similarity search over the raw text collection. No
// rewriting, no categories, no expansion.
func (r *Retriever) SimpleSearch(ctx context.Context, userID string, query string, limit int) ([]*model.Chunk, error) {
	return r.searchCollection(userID, model.CollectionText, query, limit)
}

// SummarySearch runs one similarity search over the entry summary collection.
func (r *Retriever) SummarySearch(ctx context.Context, userID string, query string, limit int) ([]*model.Chunk, error) {
	return r.searchCollection(userID, model.CollectionSummary, query, limit)
}

func (r *Retriever) searchCollection(userID string, collection string, query string, limit int) ([]*model.Chunk, error) {
	embedding, err := r.embedder(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	chunks, err := r.chunks.SelectChunksBySimilarity(collection, userID, embedding, limit, 0)
	if err != nil {
		return nil, helper.NewError("search collection", err)
	}
	return chunks, nil
}
