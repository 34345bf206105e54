package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/core/cache"
	"github.com/siherrmann/docqa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex serves preset similarity scores and counts search calls
type fakeIndex struct {
	mu     sync.Mutex
	calls  int
	scored []scoredChunk
	err    error
	// failOnce makes only the first call fail
	failOnce bool
}

type scoredChunk struct {
	chunk *model.Chunk
	score float64
}

func (f *fakeIndex) SearchSimilar(ctx context.Context, documentRID uuid.UUID, embedding []float32, limit int) ([]*model.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		if f.failOnce && f.calls > 1 {
			// fall through to results
		} else {
			return nil, f.err
		}
	}

	results := make([]*model.SearchResult, 0, len(f.scored))
	for _, sc := range f.scored {
		if len(results) >= limit {
			break
		}
		results = append(results, model.ResultFromChunk(sc.chunk, sc.score, "vector"))
	}
	return results, nil
}

func (f *fakeIndex) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeChunks serves a fixed chunk list for the lexical tracks
type fakeChunks struct {
	chunks []*model.Chunk
	err    error
}

func (f *fakeChunks) ChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func fakeEmbed(text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChunk(index int, content string, keywords []string) *model.Chunk {
	return &model.Chunk{
		ChunkID:      model.NewChunkID(content, index),
		Content:      content,
		ChunkIndex:   index,
		Keywords:     keywords,
		QualityScore: 0.5,
	}
}

func newTestEngine(index VectorIndex, chunks ChunkSource, config model.SearchConfig) *Engine {
	return NewEngine(index, chunks, fakeEmbed, testAnalyzer, cache.New(100, time.Hour), config, quietLogger())
}

func TestHybridSearch(t *testing.T) {
	mlChunk := testChunk(0, "机器学习方法包括监督学习、无监督学习和强化学习。每种方法适用于不同的任务场景。", []string{"机器学习", "监督学习"})
	weatherChunk := testChunk(1, "今天的天气非常好，阳光明媚，适合户外活动和散步。", []string{"天气", "户外"})
	foodChunk := testChunk(2, "食堂今天供应红烧肉、清蒸鱼和各种时令蔬菜，价格实惠。", []string{"食堂", "红烧肉"})

	t.Run("Relevant chunk ranks first across tracks", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{
			{mlChunk, 0.9},
			{weatherChunk, 0.4},
			{foodChunk, 0.3},
		}}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk, weatherChunk, foodChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 3)

		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, mlChunk.Content, results[0].Content)
		for _, r := range results {
			assert.Equal(t, "hybrid", r.RetrievalMethod)
			assert.GreaterOrEqual(t, r.SimilarityScore, 0.0)
			assert.LessOrEqual(t, r.SimilarityScore, 1.0)
		}
	})

	t.Run("Empty document yields an empty result list", func(t *testing.T) {
		index := &fakeIndex{}
		source := &fakeChunks{}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 5)

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("Results are truncated to k", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{
			{mlChunk, 0.9},
			{weatherChunk, 0.4},
			{foodChunk, 0.3},
		}}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk, weatherChunk, foodChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 1)

		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("Non-positive k falls back to the configured top k", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{mlChunk, 0.9}}}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 0)

		require.NoError(t, err)
		assert.NotEmpty(t, results)
	})

	t.Run("Repeated search is served from the cache", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{mlChunk, 0.9}, {weatherChunk, 0.4}}}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk, weatherChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())
		rid := uuid.New()

		first, err := engine.HybridSearch(context.Background(), rid, "机器学习方法", 2)
		require.NoError(t, err)
		callsAfterFirst := index.callCount()

		second, err := engine.HybridSearch(context.Background(), rid, "机器学习方法", 2)
		require.NoError(t, err)

		assert.Equal(t, callsAfterFirst, index.callCount(), "second identical search must not hit the vector index")
		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Content, second[i].Content)
			assert.InDelta(t, first[i].SimilarityScore, second[i].SimilarityScore, 1e-9)
		}
	})

	t.Run("Failing chunk source degrades to the vector track", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{mlChunk, 0.9}, {weatherChunk, 0.4}}}
		source := &fakeChunks{err: fmt.Errorf("connection refused")}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 2)

		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, mlChunk.Content, results[0].Content)
	})

	t.Run("Vector failure falls back to plain vector search", func(t *testing.T) {
		index := &fakeIndex{
			scored:   []scoredChunk{{mlChunk, 0.9}},
			err:      fmt.Errorf("index unavailable"),
			failOnce: true,
		}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 2)

		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "vector", results[0].RetrievalMethod)
	})

	t.Run("Persistent vector failure surfaces the error", func(t *testing.T) {
		index := &fakeIndex{err: fmt.Errorf("index unavailable")}
		source := &fakeChunks{chunks: []*model.Chunk{mlChunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())

		_, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习方法", 2)

		require.Error(t, err)
		var trackErr *TrackError
		require.ErrorAs(t, err, &trackErr)
		assert.Equal(t, TrackVector, trackErr.Track)
	})

	t.Run("Pure vector weighting preserves vector order", func(t *testing.T) {
		// Uniform quality and moderate lengths keep the rerank adjustments
		// identical across results.
		first := testChunk(0, "机器学习方法包括监督学习和无监督学习，应用广泛。", nil)
		second := testChunk(1, "深度学习依赖神经网络结构，在图像识别中表现突出。", nil)
		third := testChunk(2, "数据预处理是建模流程中非常重要的一个环节步骤。", nil)

		index := &fakeIndex{scored: []scoredChunk{
			{first, 0.9},
			{second, 0.8},
			{third, 0.7},
		}}
		source := &fakeChunks{}

		config := model.DefaultSearchConfig()
		config.Alpha = 1.0
		engine := newTestEngine(index, source, config)

		results, err := engine.HybridSearch(context.Background(), uuid.New(), "机器学习模型训练", 3)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, first.Content, results[0].Content)
		assert.Equal(t, second.Content, results[1].Content)
		assert.Equal(t, third.Content, results[2].Content)
	})
}

func TestVectorSearch(t *testing.T) {
	chunk := testChunk(0, "机器学习方法包括监督学习、无监督学习和强化学习。", nil)

	t.Run("Results carry the vector method and raw score", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{chunk, 0.87}}}
		engine := newTestEngine(index, &fakeChunks{}, model.DefaultSearchConfig())

		results, err := engine.VectorSearch(context.Background(), uuid.New(), "机器学习", 5)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "vector", results[0].RetrievalMethod)
		assert.InDelta(t, 0.87, results[0].SimilarityScore, 1e-9)
	})

	t.Run("Cached results are isolated from caller mutation", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{chunk, 0.87}}}
		engine := newTestEngine(index, &fakeChunks{}, model.DefaultSearchConfig())
		rid := uuid.New()

		first, err := engine.VectorSearch(context.Background(), rid, "机器学习", 5)
		require.NoError(t, err)
		first[0].SimilarityScore = 0.0

		second, err := engine.VectorSearch(context.Background(), rid, "机器学习", 5)
		require.NoError(t, err)

		assert.InDelta(t, 0.87, second[0].SimilarityScore, 1e-9)
		assert.Equal(t, 1, index.callCount())
	})

	t.Run("Index error is reported as a vector track error", func(t *testing.T) {
		index := &fakeIndex{err: fmt.Errorf("boom")}
		engine := newTestEngine(index, &fakeChunks{}, model.DefaultSearchConfig())

		_, err := engine.VectorSearch(context.Background(), uuid.New(), "机器学习", 5)

		var trackErr *TrackError
		require.ErrorAs(t, err, &trackErr)
		assert.Equal(t, TrackVector, trackErr.Track)
	})
}

func TestRetrievers(t *testing.T) {
	chunk := testChunk(0, "机器学习方法包括监督学习、无监督学习和强化学习。", []string{"机器学习"})

	t.Run("Basic retriever serves vector results truncated to k", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{chunk, 0.9}}}
		engine := newTestEngine(index, &fakeChunks{}, model.DefaultSearchConfig())
		retriever := NewBasicRetriever(engine)

		results, err := retriever.Search(context.Background(), uuid.New(), "机器学习", 1)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "vector", results[0].RetrievalMethod)
	})

	t.Run("Hybrid retriever serves fused results", func(t *testing.T) {
		index := &fakeIndex{scored: []scoredChunk{{chunk, 0.9}}}
		source := &fakeChunks{chunks: []*model.Chunk{chunk}}
		engine := newTestEngine(index, source, model.DefaultSearchConfig())
		retriever := NewHybridRetriever(engine)

		results, err := retriever.Search(context.Background(), uuid.New(), "机器学习", 1)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "hybrid", results[0].RetrievalMethod)
	})
}
