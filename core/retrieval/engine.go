package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/core/cache"
	"github.com/siherrmann/docqa/core/pipeline"
	"github.com/siherrmann/docqa/core/scoring"
	"github.com/siherrmann/docqa/model"
	"golang.org/x/sync/errgroup"
)

// Engine runs the vector, keyword and semantic feature search tracks and
// fuses their results. The result cache is injected; the engine never owns a
// process-wide singleton.
type Engine struct {
	index    VectorIndex
	chunks   ChunkSource
	embed    pipeline.EmbedFunc
	scorer   *scoring.LexicalScorer
	features *scoring.FeatureExtractor
	expander *Expander
	cache    *cache.Cache
	config   model.SearchConfig
	log      *slog.Logger
}

// NewEngine creates a retrieval engine over the given capabilities
func NewEngine(
	index VectorIndex,
	chunks ChunkSource,
	embed pipeline.EmbedFunc,
	analyzer *scoring.Analyzer,
	resultCache *cache.Cache,
	config model.SearchConfig,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		index:    index,
		chunks:   chunks,
		embed:    embed,
		scorer:   scoring.NewLexicalScorer(analyzer),
		features: scoring.NewFeatureExtractor(analyzer),
		expander: NewExpander(analyzer),
		cache:    resultCache,
		config:   config,
		log:      logger,
	}
}

// Config returns the engine's search configuration
func (e *Engine) Config() model.SearchConfig {
	return e.config
}

// VectorSearch performs cached plain vector search. Results are cloned on the
// way in and out of the cache so later score rewrites never corrupt cached
// entries.
func (e *Engine) VectorSearch(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	key := cache.SearchKey(documentRID, query, k)

	if cached, ok := e.cache.Get(key); ok {
		if results, ok := cached.([]*model.SearchResult); ok {
			e.log.Debug("Vector search cache hit", slog.String("document_rid", documentRID.String()))
			return cloneResults(results), nil
		}
	}

	embedding, err := e.embed(query)
	if err != nil {
		return nil, &TrackError{Track: TrackVector, Err: err}
	}

	results, err := e.index.SearchSimilar(ctx, documentRID, embedding, k)
	if err != nil {
		return nil, &TrackError{Track: TrackVector, Err: err}
	}
	for _, r := range results {
		r.RetrievalMethod = "vector"
	}

	e.cache.Set(key, cloneResults(results), e.config.CacheTTL)

	return results, nil
}

// HybridSearch runs all three search tracks concurrently, fuses their
// normalized scores and reranks the fused list. Keyword and semantic track
// failures degrade to the remaining tracks; a vector track failure degrades
// to cached plain vector search. An unknown or empty document yields an
// empty result list, not an error.
func (e *Engine) HybridSearch(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	if k <= 0 {
		k = e.config.TopK
	}
	limit := 2 * k

	expandedQuery := e.expander.Expand(query)

	var (
		vectorResults, keywordResults, semanticResults []*model.SearchResult
		vectorErr, keywordErr, semanticErr             error
	)

	// The tracks share no mutable state; each writes only its own pair of
	// variables. Errors are collected per track instead of cancelling the
	// group, since losing one track must not abort the others.
	g := new(errgroup.Group)
	g.Go(func() error {
		vectorResults, vectorErr = e.VectorSearch(ctx, documentRID, expandedQuery, limit)
		return nil
	})
	g.Go(func() error {
		// The keyword track scores against the original query, not the
		// expanded one.
		keywordResults, keywordErr = e.keywordSearch(ctx, documentRID, query, limit)
		return nil
	})
	g.Go(func() error {
		semanticResults, semanticErr = e.semanticSearch(ctx, documentRID, query, limit)
		return nil
	})
	_ = g.Wait()

	if keywordErr != nil {
		e.log.Warn("Keyword track failed, continuing without it", slog.String("error", keywordErr.Error()))
		keywordResults = nil
	}
	if semanticErr != nil {
		e.log.Warn("Semantic track failed, continuing without it", slog.String("error", semanticErr.Error()))
		semanticResults = nil
	}
	if vectorErr != nil {
		e.log.Warn("Vector track failed, falling back to plain vector search", slog.String("error", vectorErr.Error()))
		return e.fallbackVectorSearch(ctx, documentRID, query, k)
	}

	if len(vectorResults) == 0 && len(keywordResults) == 0 && len(semanticResults) == 0 {
		return []*model.SearchResult{}, nil
	}

	normalizeScores(vectorResults)
	normalizeScores(keywordResults)
	normalizeScores(semanticResults)

	fused := fuseTracks(vectorResults, keywordResults, semanticResults, e.config.Alpha, e.config.KeywordShare)
	rerank(fused, query, e.config)

	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, nil
}

// fallbackVectorSearch serves the degraded-mode contract: cached plain vector
// search with the unexpanded query, truncated to k.
func (e *Engine) fallbackVectorSearch(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	results, err := e.VectorSearch(ctx, documentRID, query, k)
	if err != nil {
		return nil, err
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// keywordSearch scores every chunk of the document lexically against the
// query, keeps positive scores and returns the top results.
func (e *Engine) keywordSearch(ctx context.Context, documentRID uuid.UUID, query string, limit int) ([]*model.SearchResult, error) {
	chunks, err := e.chunks.ChunksByDocument(ctx, documentRID)
	if err != nil {
		return nil, &TrackError{Track: TrackKeyword, Err: err}
	}

	var results []*model.SearchResult
	for _, chunk := range chunks {
		score := e.scorer.ScoreChunk(chunk, query)
		if score <= 0 {
			continue
		}
		results = append(results, model.ResultFromChunk(chunk, score, "keyword"))
	}

	// Chunks arrive ordered by index, stable sort keeps that order for ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// semanticSearch ranks chunks by structural and keyword feature similarity to
// the query, filtered to scores above the configured threshold.
func (e *Engine) semanticSearch(ctx context.Context, documentRID uuid.UUID, query string, limit int) ([]*model.SearchResult, error) {
	chunks, err := e.chunks.ChunksByDocument(ctx, documentRID)
	if err != nil {
		return nil, &TrackError{Track: TrackSemantic, Err: err}
	}

	queryFeatures := e.features.Extract(query)

	var results []*model.SearchResult
	for _, chunk := range chunks {
		score := scoring.FeatureSimilarity(queryFeatures, e.features.Extract(chunk.Content))
		if score <= e.config.SemanticThreshold {
			continue
		}
		results = append(results, model.ResultFromChunk(chunk, score, "semantic"))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cloneResults(results []*model.SearchResult) []*model.SearchResult {
	cloned := make([]*model.SearchResult, len(results))
	for i, r := range results {
		cloned[i] = r.Clone()
	}
	return cloned
}
