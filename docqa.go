package docqa

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/core/answer"
	"github.com/siherrmann/docqa/core/cache"
	"github.com/siherrmann/docqa/core/pipeline"
	"github.com/siherrmann/docqa/core/retrieval"
	"github.com/siherrmann/docqa/core/scoring"
	"github.com/siherrmann/docqa/database"
	"github.com/siherrmann/docqa/helper"
	"github.com/siherrmann/docqa/model"
	loadSql "github.com/siherrmann/docqa/sql"
)

// DocQA provides a unified interface to document ingestion, hybrid retrieval
// and question answering.
type DocQA struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Analyzer  *scoring.Analyzer
	Cache     *cache.Cache
	Pipeline  *pipeline.Pipeline // Optional ingestion pipeline
	Engine    *retrieval.Engine  // Retrieval engine, built once the pipeline is set
	Retriever retrieval.Retriever
	Composer  *answer.Composer // Built once a generator is set
	config    model.SearchConfig
	// Logging
	log *slog.Logger
}

// NewDocQA creates a new DocQA instance with all database handlers
// initialized. The retrieval engine is built lazily by SetPipeline or
// UseDefaultPipeline since it needs an embedder.
func NewDocQA(dbConfig *helper.DatabaseConfiguration, searchConfig model.SearchConfig, embeddingDim int) (*DocQA, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("docqa", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create handlers in the correct order (documents first, chunks reference them)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	analyzer, err := scoring.NewAnalyzer()
	if err != nil {
		return nil, helper.NewError("create analyzer", err)
	}

	return &DocQA{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Analyzer:  analyzer,
		Cache:     cache.New(cache.DefaultMaxEntries, cache.DefaultMaxAge),
		config:    searchConfig,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (d *DocQA) Close() error {
	if d.DB != nil && d.DB.Instance != nil {
		return d.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the ingestion pipeline and builds the retrieval engine on
// top of its embedder.
func (d *DocQA) SetPipeline(p *pipeline.Pipeline) {
	d.Pipeline = p
	d.Engine = retrieval.NewEngine(d.Chunks, d.Chunks, p.Embedder, d.Analyzer, d.Cache, d.config, d.log)
	d.Retriever = retrieval.NewHybridRetriever(d.Engine)
}

// UseDefaultPipeline sets up the default chunking and embedding pipeline.
// This uses DefaultChunker with 1000 char chunks and 200 char overlap, and
// DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions).
func (d *DocQA) UseDefaultPipeline() error {
	chunker := pipeline.DefaultChunker(1000, 200)
	embedder, batchEmbedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	p := pipeline.NewPipeline(chunker, embedder, d.Analyzer)
	p.SetBatchEmbedder(batchEmbedder)
	d.SetPipeline(p)
	return nil
}

// SetGenerator sets the language model used for answer and summary
// generation and builds the composer.
func (d *DocQA) SetGenerator(generate pipeline.GenerateFunc) error {
	if d.Retriever == nil {
		return helper.NewError("set generator", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	d.Composer = answer.NewComposer(d.Retriever, generate, d.Analyzer, d.log)
	return nil
}

// StartCacheSweeper starts the periodic cache sweep, removing entries older
// than the absolute age ceiling, until ctx is cancelled.
func (d *DocQA) StartCacheSweeper(ctx context.Context, interval time.Duration) {
	d.Cache.StartSweeper(ctx, interval)
}

// ProcessAndInsertDocument processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Processing the content into enriched, embedded chunks using the pipeline
// 3. Inserting all chunks with the document ID
// The document's Content field is used for processing but not stored in the database.
// Returns the number of chunks inserted and any error encountered.
func (d *DocQA) ProcessAndInsertDocument(doc *model.Document) (int, error) {
	if d.Pipeline == nil {
		return 0, helper.NewError("process document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if doc.Content == "" {
		return 0, helper.NewError("process document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	// Insert document metadata
	if err := d.Documents.InsertDocument(doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	d.log.Info("Inserted document", slog.String("document_rid", doc.RID.String()), slog.String("title", doc.Title))

	// Process content into chunks
	chunks, err := d.Pipeline.Process(content)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	d.log.Info("Processed document into chunks", slog.Int("num_chunks", len(chunks)), slog.String("document_rid", doc.RID.String()))

	// Insert all chunks
	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := d.Chunks.InsertChunk(chunk); err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	return len(chunks), nil
}

// Search performs cached plain vector search within a document
func (d *DocQA) Search(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	if d.Engine == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	basic := retrieval.NewBasicRetriever(d.Engine)
	return basic.Search(ctx, documentRID, query, k)
}

// HybridSearch performs fused vector, keyword and semantic feature search
// within a document.
func (d *DocQA) HybridSearch(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	if d.Retriever == nil {
		return nil, helper.NewError("hybrid search", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	return d.Retriever.Search(ctx, documentRID, query, k)
}

// AnswerQuestion answers a question about a document with sources, confidence
// and quality scores.
func (d *DocQA) AnswerQuestion(ctx context.Context, documentRID uuid.UUID, question string, k int) (*model.Answer, error) {
	if d.Composer == nil {
		return nil, helper.NewError("answer question", fmt.Errorf("generator not set, use SetGenerator() first"))
	}

	return d.Composer.AnswerQuestion(ctx, documentRID, question, k), nil
}

// GenerateSummary generates a structured summary of a document. The summary
// is cached per document.
func (d *DocQA) GenerateSummary(ctx context.Context, documentRID uuid.UUID) (*model.Summary, error) {
	if d.Composer == nil {
		return nil, helper.NewError("generate summary", fmt.Errorf("generator not set, use SetGenerator() first"))
	}

	key := cache.SummaryKey(documentRID)
	if cached, ok := d.Cache.Get(key); ok {
		if summary, ok := cached.(*model.Summary); ok {
			return summary, nil
		}
	}

	summary := d.Composer.GenerateSummary(ctx, documentRID)
	if summary.Success {
		d.Cache.Set(key, summary, d.config.CacheTTL)
	}
	return summary, nil
}

// DeleteDocument deletes a document and all its chunks
func (d *DocQA) DeleteDocument(documentRID uuid.UUID) error {
	if err := d.Documents.DeleteDocument(documentRID); err != nil {
		return helper.NewError("delete document", err)
	}
	d.Cache.Delete(cache.SummaryKey(documentRID))
	return nil
}
