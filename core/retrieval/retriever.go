package retrieval

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/siherrmann/mentis/core/pipeline"
	"github.com/siherrmann/mentis/database"
	"github.com/siherrmann/mentis/model"
)

// Retriever runs category targeted similarity searches over the chunk store
// and merges them into a single result set. It only reads the store; one
// result set lives for one Retrieve call.
type Retriever struct {
	chunks      database.ChunksDBHandlerFunctions
	connections database.ConnectionsDBHandlerFunctions
	embedder    pipeline.EmbedFunc
	logger      *slog.Logger
}

// NewRetriever creates a new retriever over the given handlers.
func NewRetriever(chunks database.ChunksDBHandlerFunctions, connections database.ConnectionsDBHandlerFunctions, embedder pipeline.EmbedFunc, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		chunks:      chunks,
		connections: connections,
		embedder:    embedder,
		logger:      logger,
	}
}

// Retrieve runs every (query, category) pair, merges matches per category and
// truncates the total to the configured maximum. A pair whose embedding or
// search fails is logged and contributes nothing while the remaining pairs
// still run. With ExpandConnections set, the merged set is expanded by one
// connection hop afterwards.
func (r *Retriever) Retrieve(ctx context.Context, userID string, queries []model.RewrittenQuery, config *model.QueryConfig) (*model.ResultSet, error) {
	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Merge per category, dedup by object ID keeping the higher score.
	// Categories are never deduplicated against each other.
	merged := map[model.Category]map[string]model.ScoredResult{}
	var order []model.Category

	for _, query := range queries {
		embedding, err := r.embedder(query.Query)
		if err != nil {
			r.logger.Warn("Search failed", slog.Any("error", &model.SearchError{Query: query.Query, Category: query.Category, Err: err}))
			continue
		}

		chunks, err := r.chunks.SelectChunksBySimilarity(query.Category.CollectionName(), userID, embedding, config.PerCategoryLimit, config.SimilarityThreshold)
		if err != nil {
			r.logger.Warn("Search failed", slog.Any("error", &model.SearchError{Query: query.Query, Category: query.Category, Err: err}))
			continue
		}

		if _, ok := merged[query.Category]; !ok {
			merged[query.Category] = map[string]model.ScoredResult{}
			order = append(order, query.Category)
		}
		for _, chunk := range chunks {
			existing, ok := merged[query.Category][chunk.ObjectID]
			if !ok || chunk.Similarity > existing.Score {
				merged[query.Category][chunk.ObjectID] = model.ScoredResult{
					Chunk:           chunk,
					Score:           chunk.Similarity,
					RetrievalMethod: model.RetrievalMethodVector,
				}
			}
		}
	}

	perCategory := map[model.Category][]model.ScoredResult{}
	total := 0
	for _, category := range order {
		results := make([]model.ScoredResult, 0, len(merged[category]))
		for _, result := range merged[category] {
			results = append(results, result)
		}
		sort.Slice(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
		perCategory[category] = results
		total += len(results)
	}

	// Global cap: repeatedly drop the lowest scoring entry, on a score tie
	// from the later inserted category. Each category is sorted descending,
	// so its candidate is always the tail.
	for total > config.MaxTotalResults {
		drop := -1
		minScore := math.Inf(1)
		for i, category := range order {
			results := perCategory[category]
			if len(results) == 0 {
				continue
			}
			if lowest := results[len(results)-1].Score; lowest <= minScore {
				minScore = lowest
				drop = i
			}
		}
		if drop < 0 {
			break
		}
		category := order[drop]
		perCategory[category] = perCategory[category][:len(perCategory[category])-1]
		total--
	}

	resultSet := model.NewResultSet()
	for _, category := range order {
		if len(perCategory[category]) == 0 {
			continue
		}
		resultSet.Append(category, perCategory[category]...)
	}

	if config.ExpandConnections {
		r.expandConnections(ctx, userID, resultSet, config)
	}

	return resultSet, nil
}
