package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/model"
	loadSql "github.com/siherrmann/mentis/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	DeleteChunk(id int) error
	DeleteChunks(collection string, userID string) (int64, error)
	SelectChunk(id int) (*model.Chunk, error)
	SelectChunkByObjectID(collection string, userID string, objectID string) (*model.Chunk, error)
	SelectChunksByField(collection string, userID string, field string, value string, limit int) ([]*model.Chunk, error)
	SelectChunksBySimilarity(collection string, userID string, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
	CountChunks(collection string, userID string) (int64, error)
	ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		chunk.ObjectID,
		chunk.Collection,
		chunk.UserID,
		chunk.Title,
		chunk.Name,
		chunk.Description,
		chunk.Content,
		pq.Array(chunk.Embedding),
		chunk.Metadata,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.ObjectID,
		&chunk.Collection,
		&chunk.UserID,
		&chunk.Title,
		&chunk.Name,
		&chunk.Description,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunk($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteChunks deletes all chunks of a collection for a user and
// returns the number of deleted rows.
func (h *ChunksDBHandler) DeleteChunks(collection string, userID string) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRow(
		`SELECT delete_chunks($1, $2)`,
		collection,
		userID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.ObjectID,
		&chunk.Collection,
		&chunk.UserID,
		&chunk.Title,
		&chunk.Name,
		&chunk.Description,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunkByObjectID retrieves a chunk by its stable object identifier
// within one collection. Returns sql.ErrNoRows wrapped if no chunk matches.
func (h *ChunksDBHandler) SelectChunkByObjectID(collection string, userID string, objectID string) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk_by_object_id($1, $2, $3)`,
		collection,
		userID,
		objectID,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.ObjectID,
		&chunk.Collection,
		&chunk.UserID,
		&chunk.Title,
		&chunk.Name,
		&chunk.Description,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByField retrieves chunks where the given text field equals value.
// Allowed fields are object_id, title, name, description and content.
func (h *ChunksDBHandler) SelectChunksByField(collection string, userID string, field string, value string, limit int) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_field($1, $2, $3, $4, $5)`,
		collection,
		userID,
		field,
		value,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.ObjectID,
			&chunk.Collection,
			&chunk.UserID,
			&chunk.Title,
			&chunk.Name,
			&chunk.Description,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity performs vector similarity search within one
// collection. Results carry a similarity in [0, 1] (1 - cosine distance)
// and come back ordered best first.
func (h *ChunksDBHandler) SelectChunksBySimilarity(collection string, userID string, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4, $5)`,
		collection,
		userID,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.ObjectID,
			&chunk.Collection,
			&chunk.UserID,
			&chunk.Title,
			&chunk.Name,
			&chunk.Description,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// CountChunks returns the number of chunks in a collection for a user.
func (h *ChunksDBHandler) CountChunks(collection string, userID string) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(
		`SELECT count_chunks($1, $2)`,
		collection,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
