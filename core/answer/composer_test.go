package answer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRetriever serves preset results or a preset error
type fakeRetriever struct {
	results []*model.SearchResult
	err     error
	// byQuery overrides results per query when set
	byQuery map[string][]*model.SearchResult
	queries []string
}

func (f *fakeRetriever) Search(ctx context.Context, documentRID uuid.UUID, query string, k int) ([]*model.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if f.byQuery != nil {
		return f.byQuery[query], nil
	}
	return f.results, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticGenerator(response string) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		return response, nil
	}
}

func testResults() []*model.SearchResult {
	return []*model.SearchResult{
		{
			Content:         "机器学习方法包括监督学习、无监督学习和强化学习。监督学习使用带标签的数据训练模型。",
			ChunkID:         "chunk-1",
			ChunkIndex:      0,
			Keywords:        []string{"机器学习", "监督学习"},
			Summary:         "机器学习方法概览",
			QualityScore:    0.8,
			SimilarityScore: 0.9,
		},
		{
			Content:         "深度学习是机器学习的子领域，使用多层神经网络处理复杂任务。",
			ChunkID:         "chunk-2",
			ChunkIndex:      1,
			Keywords:        []string{"深度学习", "神经网络"},
			QualityScore:    0.7,
			SimilarityScore: 0.75,
		},
	}
}

func TestAnswerQuestion(t *testing.T) {
	rid := uuid.New()
	generated := "根据资料，机器学习方法包括监督学习、无监督学习和强化学习三大类。其中监督学习使用带标签的数据训练模型。"

	t.Run("Successful answer carries sources and scores", func(t *testing.T) {
		retriever := &fakeRetriever{results: testResults()}
		composer := NewComposer(retriever, staticGenerator(generated), testAnalyzer, quietLogger())

		result := composer.AnswerQuestion(context.Background(), rid, "机器学习有哪些方法？", 5)

		require.True(t, result.Success)
		assert.Equal(t, generated, result.Answer)
		assert.Equal(t, "hybrid", result.SearchMethod)
		assert.Empty(t, result.Error)

		assert.Greater(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.Greater(t, result.QualityScore, 0.0)
		assert.LessOrEqual(t, result.QualityScore, 1.0)
		assert.GreaterOrEqual(t, result.ProcessingTime, 0.0)

		require.Len(t, result.Sources, 2)
		assert.Equal(t, "chunk-1", result.Sources[0].ChunkID)
		assert.NotEmpty(t, result.Sources[0].ContentPreview)
	})

	t.Run("No relevant content is a successful empty answer", func(t *testing.T) {
		retriever := &fakeRetriever{results: []*model.SearchResult{}}
		composer := NewComposer(retriever, staticGenerator(generated), testAnalyzer, quietLogger())

		result := composer.AnswerQuestion(context.Background(), rid, "无关问题", 5)

		require.True(t, result.Success)
		assert.Equal(t, noContentMessage, result.Answer)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Empty(t, result.Sources)
	})

	t.Run("Retrieval failure produces a generic failure answer", func(t *testing.T) {
		retriever := &fakeRetriever{err: fmt.Errorf("store unavailable")}
		composer := NewComposer(retriever, staticGenerator(generated), testAnalyzer, quietLogger())

		result := composer.AnswerQuestion(context.Background(), rid, "机器学习有哪些方法？", 5)

		require.False(t, result.Success)
		assert.Equal(t, failureMessage, result.Answer)
		assert.Contains(t, result.Error, "store unavailable")
		assert.Equal(t, 0.0, result.Confidence)
	})

	t.Run("Generation failure on both prompts fails the answer", func(t *testing.T) {
		retriever := &fakeRetriever{results: testResults()}
		generate := func(ctx context.Context, prompt string) (string, error) {
			return "", fmt.Errorf("model overloaded")
		}
		composer := NewComposer(retriever, generate, testAnalyzer, quietLogger())

		result := composer.AnswerQuestion(context.Background(), rid, "机器学习有哪些方法？", 5)

		require.False(t, result.Success)
		assert.Equal(t, failureMessage, result.Answer)
		assert.Contains(t, result.Error, "model overloaded")
	})

	t.Run("Basic prompt is used when the enhanced prompt fails", func(t *testing.T) {
		retriever := &fakeRetriever{results: testResults()}
		calls := 0
		generate := func(ctx context.Context, prompt string) (string, error) {
			calls++
			if calls == 1 {
				return "", fmt.Errorf("prompt rejected")
			}
			return generated, nil
		}
		composer := NewComposer(retriever, generate, testAnalyzer, quietLogger())

		result := composer.AnswerQuestion(context.Background(), rid, "机器学习有哪些方法？", 5)

		require.True(t, result.Success)
		assert.Equal(t, 2, calls)
		assert.Equal(t, generated, result.Answer)
	})

	t.Run("Prompt contains ranked context and the question", func(t *testing.T) {
		retriever := &fakeRetriever{results: testResults()}
		var captured string
		generate := func(ctx context.Context, prompt string) (string, error) {
			captured = prompt
			return generated, nil
		}
		composer := NewComposer(retriever, generate, testAnalyzer, quietLogger())

		composer.AnswerQuestion(context.Background(), rid, "机器学习有哪些方法？", 5)

		assert.Contains(t, captured, "【文档片段 1】")
		assert.Contains(t, captured, "机器学习有哪些方法？")
		assert.Contains(t, captured, "监督学习")
	})
}

func TestConfidence(t *testing.T) {
	composer := NewComposer(&fakeRetriever{}, staticGenerator(""), testAnalyzer, quietLogger())
	question := "机器学习有哪些方法？"

	t.Run("No results means zero confidence", func(t *testing.T) {
		assert.Equal(t, 0.0, composer.confidence(nil, question, "回答"))
	})

	t.Run("Confidence stays within bounds", func(t *testing.T) {
		answer := "机器学习方法包括监督学习和无监督学习，这是一个完整的回答。"
		confidence := composer.confidence(testResults(), question, answer)

		assert.Greater(t, confidence, 0.0)
		assert.LessOrEqual(t, confidence, 1.0)
	})

	t.Run("Stronger evidence raises confidence", func(t *testing.T) {
		answer := "机器学习方法包括监督学习和无监督学习，这是一个完整的回答。"
		weak := []*model.SearchResult{{Content: "内容", SimilarityScore: 0.1, QualityScore: 0.1}}

		assert.Greater(t,
			composer.confidence(testResults(), question, answer),
			composer.confidence(weak, question, answer),
		)
	})

	t.Run("Very short answers are rated incomplete", func(t *testing.T) {
		assert.Equal(t, 0.2, composer.completeness(question, "不知道"))
	})

	t.Run("Terminated relevant answers rate more complete", func(t *testing.T) {
		full := composer.completeness(question, "机器学习方法包括监督学习、无监督学习和强化学习三大类。")
		bare := composer.completeness(question, "有几种不同类型的东西存在于这个世界上面")

		assert.Greater(t, full, bare)
	})

	t.Run("Sentence punctuation anywhere in the answer earns the bonus", func(t *testing.T) {
		midPunct := composer.completeness(question, "这里有一句话。后面还跟着没有标点的另外一段文字内容")
		noPunct := composer.completeness(question, "这里有一句话后面还跟着没有标点的另外一段文字内容")

		assert.InDelta(t, 0.7, midPunct, 1e-9)
		assert.InDelta(t, 0.5, noPunct, 1e-9)
	})
}

func TestAnswerQuality(t *testing.T) {
	composer := NewComposer(&fakeRetriever{}, staticGenerator(""), testAnalyzer, quietLogger())

	t.Run("Quality stays within bounds", func(t *testing.T) {
		for _, answer := range []string{
			"短。",
			"机器学习方法包括监督学习、无监督学习和强化学习。因为监督学习使用带标签的数据，所以适合分类任务。",
			strings.Repeat("很长的回答内容。", 300),
		} {
			quality := composer.answerQuality(answer, testResults())

			assert.GreaterOrEqual(t, quality, 0.0)
			assert.LessOrEqual(t, quality, 1.0)
		}
	})

	t.Run("Grounded answer scores above unrelated answer", func(t *testing.T) {
		grounded := "根据资料，机器学习方法包括监督学习、无监督学习和强化学习。因为监督学习使用带标签的数据训练模型，所以应用广泛。"
		unrelated := "今天天气很好，阳光明媚，适合出门散步游玩，顺便买一些喜欢的东西回家慢慢享用呀。"

		assert.Greater(t,
			composer.answerQuality(grounded, testResults()),
			composer.answerQuality(unrelated, testResults()),
		)
	})

	t.Run("Literal quotes raise the grounding score", func(t *testing.T) {
		quoting := "资料指出，机器学习方法包括监督学习、无监督学习和强化学习。监督学习使用带标签的数据训练模型。"
		paraphrased := "有一类办法需要人先给样本打好记号再让程序去拟合规律。"

		assert.Greater(t,
			composer.grounding(quoting, testResults()),
			composer.grounding(paraphrased, testResults()),
		)
	})
}
