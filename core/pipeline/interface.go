package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/docqa/core/scoring"
	"github.com/siherrmann/docqa/model"
)

// ChunkFunc splits extracted document text into ordered chunk drafts
type ChunkFunc func(text string) ([]Draft, error)

// EmbedFunc generates an embedding for a single text
type EmbedFunc func(text string) ([]float32, error)

// EmbedBatchFunc generates embeddings for multiple texts in one call
type EmbedBatchFunc func(texts []string) ([][]float32, error)

// GenerateFunc invokes the language model with a prompt and returns its
// completion. Implementations own retries and timeouts.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Draft is a chunk before enrichment and embedding
type Draft struct {
	Content    string
	ChunkIndex int
}

// Pipeline combines chunking, enrichment and embedding for document ingestion
type Pipeline struct {
	Chunker       ChunkFunc
	Embedder      EmbedFunc
	BatchEmbedder EmbedBatchFunc // Optional, used over Embedder when set
	analyzer      *scoring.Analyzer
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc, analyzer *scoring.Analyzer) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
		analyzer: analyzer,
	}
}

// SetBatchEmbedder sets a batch embedding function, preferred over the
// single-text embedder during processing.
func (p *Pipeline) SetBatchEmbedder(embedder EmbedBatchFunc) {
	p.BatchEmbedder = embedder
}

// Process splits text into chunks, enriches each with keywords, a summary and
// an ingestion quality score, and generates embeddings. Chunk identifiers and
// quality scores are final after this call and never updated.
func (p *Pipeline) Process(text string) ([]*model.Chunk, error) {
	drafts, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, 0, len(drafts))
	for _, draft := range drafts {
		chunks = append(chunks, p.enrich(draft))
	}

	if err := p.embedAll(chunks); err != nil {
		return nil, err
	}

	return chunks, nil
}

func (p *Pipeline) embedAll(chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if p.BatchEmbedder != nil {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		embeddings, err := p.BatchEmbedder(texts)
		if err != nil {
			return fmt.Errorf("batch embedding failed: %w", err)
		}
		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embedding count mismatch: got %d embeddings for %d chunks", len(embeddings), len(chunks))
		}
		for i, chunk := range chunks {
			chunk.Embedding = embeddings[i]
		}
		return nil
	}

	if p.Embedder == nil {
		return fmt.Errorf("pipeline has no embedder")
	}
	for _, chunk := range chunks {
		embedding, err := p.Embedder(chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d failed: %w", chunk.ChunkIndex, err)
		}
		chunk.Embedding = embedding
	}
	return nil
}
