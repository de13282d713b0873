package retrieval

import (
	"context"
	"log/slog"

	"github.com/siherrmann/mentis/model"
)

// expandConnections adds the one hop connection neighborhood of the result
// set. Each target is looked up across the category collections in canonical
// order and joins the set under the category it was actually found in, scored
// with the origin score scaled by the configured discount and appended after
// the direct matches so it never outranks them. Dangling connections and
// lookup failures are logged, counted and skipped; expansion never fails the
// retrieval and never recurses into records it added itself.
func (r *Retriever) expandConnections(ctx context.Context, userID string, results *model.ResultSet, config *model.QueryConfig) {
	type origin struct {
		objectID string
		score    float64
	}

	// Snapshot the direct matches, exactly one hop
	var origins []origin
	for _, category := range results.Categories() {
		for _, result := range results.Results(category) {
			origins = append(origins, origin{objectID: result.Chunk.ObjectID, score: result.Score})
		}
	}

	added := 0
	dangling := 0
	for _, o := range origins {
		connections, err := r.connections.SelectConnectionsBySource(userID, o.objectID)
		if err != nil {
			r.logger.Warn("Connection lookup failed", slog.Any("error", &model.ConnectionLookupError{SourceID: o.objectID, Err: err}))
			continue
		}

		for _, connection := range connections {
			target, category, found := r.lookupTarget(userID, connection.TargetID)
			if !found {
				dangling++
				r.logger.Warn("Dangling connection", slog.Any("error", &model.ConnectionLookupError{SourceID: connection.SourceID, TargetID: connection.TargetID}))
				continue
			}

			if results.Contains(category, target.ObjectID) {
				continue
			}
			results.Append(category, model.ScoredResult{
				Chunk:           target,
				Score:           o.score * config.ConnectionDiscount,
				RetrievalMethod: model.RetrievalMethodConnection,
			})
			added++
		}
	}

	if added > 0 || dangling > 0 {
		r.logger.Debug("Expanded connections", slog.Int("added", added), slog.Int("dangling", dangling))
	}
}

// lookupTarget finds a chunk by object ID, trying every category collection
// in canonical order. Lookup errors count as not found.
func (r *Retriever) lookupTarget(userID string, objectID string) (*model.Chunk, model.Category, bool) {
	for _, category := range model.AllCategories() {
		chunk, err := r.chunks.SelectChunkByObjectID(category.CollectionName(), userID, objectID)
		if err != nil || chunk == nil {
			continue
		}
		return chunk, category, true
	}
	return nil, "", false
}
