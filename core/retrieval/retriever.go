package retrieval

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/model"
)

// BasicRetriever serves cached plain vector search. It is selected at
// construction time for stores without lexical metadata.
type BasicRetriever struct {
	engine *Engine
}

// NewBasicRetriever creates a vector-only retriever
func NewBasicRetriever(engine *Engine) *BasicRetriever {
	return &BasicRetriever{engine: engine}
}

// Search performs cached plain vector search
func (r *BasicRetriever) Search(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	results, err := r.engine.VectorSearch(ctx, documentRID, query, k)
	if err != nil {
		return nil, err
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// HybridRetriever serves fused vector, keyword and semantic feature search
type HybridRetriever struct {
	engine *Engine
}

// NewHybridRetriever creates a hybrid retriever
func NewHybridRetriever(engine *Engine) *HybridRetriever {
	return &HybridRetriever{engine: engine}
}

// Search performs hybrid search with fusion and reranking
func (r *HybridRetriever) Search(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	return r.engine.HybridSearch(ctx, documentRID, query, k)
}
