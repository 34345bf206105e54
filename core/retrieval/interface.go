package retrieval

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/model"
)

// VectorIndex is the vector-store capability consumed by the engine. The
// database chunks handler implements it; tests substitute fakes.
type VectorIndex interface {
	// SearchSimilar returns up to limit chunks of a document ranked by
	// embedding similarity, highest first.
	SearchSimilar(ctx context.Context, documentRID uuid.UUID, embedding []float32, limit int) ([]*model.SearchResult, error)
}

// ChunkSource provides the full chunk scan used by the keyword and semantic
// feature tracks.
type ChunkSource interface {
	// ChunksByDocument returns all chunks of a document ordered by chunk index.
	// An unknown document yields an empty slice, not an error.
	ChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error)
}

// Retriever is the retrieval capability selected at construction time.
// BasicRetriever serves plain vector search, HybridRetriever the fused
// multi-track search.
type Retriever interface {
	Search(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error)
}
