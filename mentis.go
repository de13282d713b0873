package mentis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/mentis/core/format"
	"github.com/siherrmann/mentis/core/pipeline"
	"github.com/siherrmann/mentis/core/retrieval"
	"github.com/siherrmann/mentis/core/rewrite"
	"github.com/siherrmann/mentis/database"
	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/llm"
	"github.com/siherrmann/mentis/model"
	loadSql "github.com/siherrmann/mentis/sql"
)

// mentisPrompt instructs the model to answer strictly from the retrieved
// diary context.
const mentisPrompt = `You are Mentis, an assistant that answers questions about a personal diary.
Use only the retrieved information below to answer. When the retrieved information
does not contain the answer, say so instead of guessing. Refer to the diary's
author in the third person unless asked otherwise.`

// Mentis provides a unified interface to retrieval, ingestion and answer
// generation over one user's diary store.
type Mentis struct {
	DB          *helper.Database
	Chunks      database.ChunksDBHandlerFunctions
	Connections database.ConnectionsDBHandlerFunctions
	Pipeline    *pipeline.Pipeline
	Retriever   *retrieval.Retriever
	Rewriter    rewrite.Rewriter
	LLM         llm.Client
	UserID      string
	QueryConfig model.QueryConfig
	// Logging
	log *slog.Logger
}

// NewMentis creates a new Mentis instance with all handlers initialized.
// The database connection and the language model client are the two total
// resource acquisitions; failure of either is fatal to the caller.
func NewMentis(dbConfig *helper.DatabaseConfiguration, appConfig *helper.AppConfig) (*Mentis, error) {
	logger := helper.NewPrettyLogger(os.Stdout, slog.LevelInfo)

	// USER_ID overrides the config file, every store operation is scoped to it
	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = appConfig.UserID
	}
	if userID == "" {
		return nil, helper.NewError("resolve user", fmt.Errorf("no user id, set USER_ID or user_id in the config file"))
	}

	// Initialize database
	db, err := helper.NewDatabase("mentis", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}
	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create the handlers, force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, appConfig.Embedding.Dimension, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	connections, err := database.NewConnectionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create connections handler", err)
	}

	llmClient, err := llm.NewClient(appConfig.LLM)
	if err != nil {
		return nil, helper.NewError("create llm client", err)
	}

	embedder, err := pipeline.DefaultEmbedder(appConfig.Embedding.ModelName, appConfig.Embedding.ModelDir)
	if err != nil {
		return nil, helper.NewError("create embedder", err)
	}

	ingestPipeline := pipeline.NewPipeline(pipeline.SentenceChunker(3), embedder)
	ingestPipeline.SetExtractor(pipeline.LLMExtractor(llmClient))
	ingestPipeline.SetSummarizer(pipeline.LLMSummarizer(llmClient))

	queryConfig := queryConfigFromApp(appConfig.Retrieval)
	if err := queryConfig.Validate(); err != nil {
		return nil, helper.NewError("validate retrieval config", err)
	}

	return &Mentis{
		DB:          db,
		Chunks:      chunks,
		Connections: connections,
		Pipeline:    ingestPipeline,
		Retriever:   retrieval.NewRetriever(chunks, connections, embedder, logger),
		Rewriter:    rewrite.NewLLMRewriter(llmClient),
		LLM:         llmClient,
		UserID:      userID,
		QueryConfig: queryConfig,
		log:         logger,
	}, nil
}

// queryConfigFromApp converts the file-level retrieval settings into a query
// config, leaving defaults in place for unset values.
func queryConfigFromApp(cfg helper.RetrievalConfig) model.QueryConfig {
	queryConfig := model.DefaultQueryConfig()
	if cfg.PerCategoryLimit > 0 {
		queryConfig.PerCategoryLimit = cfg.PerCategoryLimit
	}
	if cfg.MaxTotalResults > 0 {
		queryConfig.MaxTotalResults = cfg.MaxTotalResults
	}
	if cfg.ExpandConnections != nil {
		queryConfig.ExpandConnections = *cfg.ExpandConnections
	}
	if cfg.ConnectionDiscount > 0 {
		queryConfig.ConnectionDiscount = cfg.ConnectionDiscount
	}
	if cfg.OnRewriteError != "" {
		queryConfig.OnRewriteError = model.RewriteErrorPolicy(cfg.OnRewriteError)
	}
	if cfg.FallbackCategory != "" {
		if category, err := model.ParseCategory(cfg.FallbackCategory); err == nil {
			queryConfig.FallbackCategory = category
		}
	}
	return queryConfig
}

// Close closes the database connection
func (m *Mentis) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// SetPipeline sets the ingestion pipeline for entry processing
func (m *Mentis) SetPipeline(pipeline *pipeline.Pipeline) {
	m.Pipeline = pipeline
}

// Retrieve rewrites the query into category targeted searches and runs them.
// When rewriting fails the configured policy decides between aborting and
// falling back to the original query against the fallback category.
func (m *Mentis) Retrieve(ctx context.Context, query string) (*model.RetrievalOutput, error) {
	queries, err := m.Rewriter.Rewrite(ctx, query)
	if err != nil {
		if m.QueryConfig.OnRewriteError != model.RewriteFallbackOriginal {
			return nil, err
		}
		m.log.Warn("Query rewriting failed, continuing with the original query", slog.Any("error", err))
		queries = []model.RewrittenQuery{{Query: query, Category: m.QueryConfig.FallbackCategory}}
	}

	results, err := m.Retriever.Retrieve(ctx, m.UserID, queries, &m.QueryConfig)
	if err != nil {
		return nil, err
	}

	return &model.RetrievalOutput{Results: results, QueriesUsed: queries}, nil
}

// Chat answers one question grounded in the retrieved diary context. A
// failing generation becomes an inline error string so the session survives.
func (m *Mentis) Chat(ctx context.Context, query string) (string, error) {
	output, err := m.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}

	retrieved := format.RenderResultSet(output.Results)
	prompt := fmt.Sprintf("%s\n\nUser Question: %s\n\nRetrieved Information:\n%s\n\nAnswer:", mentisPrompt, query, retrieved)

	answer, err := m.LLM.Generate(ctx, prompt)
	if err != nil {
		m.log.Warn("Answer generation failed", slog.Any("error", &model.GenerationError{Err: err}))
		return fmt.Sprintf("Error generating response: %v", err), nil
	}
	return answer, nil
}

// SimpleSearch runs one similarity search over the raw text chunks and
// renders the matches as plain lines.
func (m *Mentis) SimpleSearch(ctx context.Context, query string, limit int) ([]string, error) {
	chunks, err := m.Retriever.SimpleSearch(ctx, m.UserID, query, limit)
	if err != nil {
		return nil, err
	}
	return format.RenderChunks(chunks), nil
}

// SummarySearch runs one similarity search over the entry summaries and
// renders the matches as plain lines.
func (m *Mentis) SummarySearch(ctx context.Context, query string, limit int) ([]string, error) {
	chunks, err := m.Retriever.SummarySearch(ctx, m.UserID, query, limit)
	if err != nil {
		return nil, err
	}
	return format.RenderChunks(chunks), nil
}

// IngestStats summarizes one ingested entry.
type IngestStats struct {
	Chunks      int
	Connections int
}

// IngestEntry processes one diary entry through the pipeline and inserts the
// produced chunks and connections. Processing failures abort before anything
// is written.
func (m *Mentis) IngestEntry(ctx context.Context, entryID string, text string) (*IngestStats, error) {
	if m.Pipeline == nil {
		return nil, helper.NewError("ingest entry", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	result, err := m.Pipeline.Process(ctx, m.UserID, entryID, text)
	if err != nil {
		return nil, helper.NewError("process entry", err)
	}

	for i, chunk := range result.Chunks {
		if err := m.Chunks.InsertChunk(chunk); err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}
	for i, connection := range result.Connections {
		if err := m.Connections.InsertConnection(connection); err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert connection %d", i), err)
		}
	}

	m.log.Info("Ingested entry",
		slog.String("entry_id", entryID),
		slog.Int("chunks", len(result.Chunks)),
		slog.Int("connections", len(result.Connections)))

	return &IngestStats{Chunks: len(result.Chunks), Connections: len(result.Connections)}, nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (m *Mentis) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return m.Chunks.ChangeIndexType(ctx, indexType, params)
}
