package audit

import (
	"math"

	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/model"
)

// ChunkStore defines the chunk store surface the audit reads.
type ChunkStore interface {
	CountChunks(collection string, userID string) (int64, error)
	SelectChunkByObjectID(collection string, userID string, objectID string) (*model.Chunk, error)
}

// ConnectionStore defines the connection store surface the audit reads.
type ConnectionStore interface {
	CountConnections(userID string) (int64, error)
	SelectConnections(userID string, limit int) ([]*model.Connection, error)
}

// AllCollections returns every collection the store uses, the category
// collections first.
func AllCollections() []string {
	collections := make([]string, 0, len(model.AllCategories())+2)
	for _, category := range model.AllCategories() {
		collections = append(collections, category.CollectionName())
	}
	return append(collections, model.CollectionText, model.CollectionSummary)
}

// CollectionCount is one collection's chunk count.
type CollectionCount struct {
	Collection string
	Count      int64
}

// CollectionCounts returns the chunk count of every collection for one user.
func CollectionCounts(store ChunkStore, userID string) ([]CollectionCount, error) {
	counts := make([]CollectionCount, 0, len(model.AllCategories())+2)
	for _, collection := range AllCollections() {
		count, err := store.CountChunks(collection, userID)
		if err != nil {
			return nil, helper.NewError("count collection", err)
		}
		counts = append(counts, CollectionCount{Collection: collection, Count: count})
	}
	return counts, nil
}

// BrokenConnection describes one connection whose target object exists in no
// category collection.
type BrokenConnection struct {
	SourceID string
	TargetID string
	Type     model.ConnectionType
}

// ConnectionAudit summarizes the referential health of the connection store.
type ConnectionAudit struct {
	Total   int64
	Audited int
	Broken  []BrokenConnection
}

// SuccessRate returns the share of audited connections whose target exists,
// in percent. An empty audit reports 100.
func (a *ConnectionAudit) SuccessRate() float64 {
	if a.Audited == 0 {
		return 100
	}
	return float64(a.Audited-len(a.Broken)) / float64(a.Audited) * 100
}

// AuditConnections checks up to limit connections for targets missing from
// every category collection. The store keeps no referential integrity, so
// broken connections are expected findings, not errors.
func AuditConnections(chunks ChunkStore, connections ConnectionStore, userID string, limit int) (*ConnectionAudit, error) {
	total, err := connections.CountConnections(userID)
	if err != nil {
		return nil, helper.NewError("count connections", err)
	}

	sample, err := connections.SelectConnections(userID, limit)
	if err != nil {
		return nil, helper.NewError("select connections", err)
	}

	result := &ConnectionAudit{Total: total, Audited: len(sample)}
	for _, connection := range sample {
		if targetExists(chunks, userID, connection.TargetID) {
			continue
		}
		result.Broken = append(result.Broken, BrokenConnection{
			SourceID: connection.SourceID,
			TargetID: connection.TargetID,
			Type:     connection.Type,
		})
	}
	return result, nil
}

func targetExists(chunks ChunkStore, userID string, objectID string) bool {
	for _, category := range model.AllCategories() {
		chunk, err := chunks.SelectChunkByObjectID(category.CollectionName(), userID, objectID)
		if err == nil && chunk != nil {
			return true
		}
	}
	return false
}

// CategoryStats describes one category's result count and score spread.
type CategoryStats struct {
	Category model.Category
	Count    int
	Min      float64
	Max      float64
	Avg      float64
}

// ScoreDistribution computes per-category statistics over one result set,
// in category insertion order.
func ScoreDistribution(results *model.ResultSet) []CategoryStats {
	var stats []CategoryStats
	for _, category := range results.Categories() {
		entries := results.Results(category)
		if len(entries) == 0 {
			continue
		}

		categoryStats := CategoryStats{
			Category: category,
			Count:    len(entries),
			Min:      math.Inf(1),
			Max:      math.Inf(-1),
		}
		sum := 0.0
		for _, entry := range entries {
			sum += entry.Score
			categoryStats.Min = math.Min(categoryStats.Min, entry.Score)
			categoryStats.Max = math.Max(categoryStats.Max, entry.Score)
		}
		categoryStats.Avg = sum / float64(categoryStats.Count)
		stats = append(stats, categoryStats)
	}
	return stats
}
