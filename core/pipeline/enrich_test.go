package pipeline

import (
	"strings"
	"testing"

	"github.com/siherrmann/docqa/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrich(t *testing.T) {
	p := NewPipeline(nil, nil, testAnalyzer)

	content := "机器学习是人工智能的一个重要分支。它通过数据训练模型，让计算机从经验中学习规律，并应用于图像识别和自然语言处理等领域。"

	t.Run("Chunk identity is derived from content and index", func(t *testing.T) {
		chunk := p.enrich(Draft{Content: content, ChunkIndex: 3})

		assert.Equal(t, model.NewChunkID(content, 3), chunk.ChunkID)
		assert.Equal(t, content, chunk.Content)
		assert.Equal(t, 3, chunk.ChunkIndex)
	})

	t.Run("Keywords are extracted", func(t *testing.T) {
		chunk := p.enrich(Draft{Content: content})

		assert.NotEmpty(t, chunk.Keywords)
		assert.LessOrEqual(t, len(chunk.Keywords), chunkKeywordCount)
	})

	t.Run("Quality score stays within bounds", func(t *testing.T) {
		for _, text := range []string{
			content,
			"短文本。",
			strings.Repeat("长文本内容重复出现。", 100),
			"没有标点的一段文字没有标点的一段文字没有标点的一段文字没有标点的一段文字没有标点的一段文字没有标点",
		} {
			chunk := p.enrich(Draft{Content: text})

			assert.GreaterOrEqual(t, chunk.QualityScore, 0.0, "text: %s", text)
			assert.LessOrEqual(t, chunk.QualityScore, 1.0, "text: %s", text)
		}
	})

	t.Run("Well formed prose scores higher than fragments", func(t *testing.T) {
		prose := p.enrich(Draft{Content: content})
		fragment := p.enrich(Draft{Content: "目录 3"})

		assert.Greater(t, prose.QualityScore, fragment.QualityScore)
	})
}

func TestLeadingSummary(t *testing.T) {
	t.Run("Short content is returned whole", func(t *testing.T) {
		content := "机器学习是人工智能的分支。"

		assert.Equal(t, content, leadingSummary(content, 120))
	})

	t.Run("Long content is cut at a sentence boundary", func(t *testing.T) {
		first := "第一句介绍背景。"
		second := "第二句展开细节，包含更多的信息和内容描述说明。"
		content := first + second + strings.Repeat("后续内容。", 50)

		summary := leadingSummary(content, len([]rune(first+second))+3)

		assert.Equal(t, first+second, summary)
	})

	t.Run("Oversized first sentence is hard cut", func(t *testing.T) {
		content := strings.Repeat("无标点内容", 50)

		summary := leadingSummary(content, 20)

		assert.Equal(t, 20, len([]rune(summary)))
	})
}

func TestProcess(t *testing.T) {
	text := "机器学习是人工智能的一个重要分支，通过大量数据训练模型。深度学习是机器学习的一个子领域，使用多层神经网络处理复杂的模式识别任务。\n\n" +
		"实验结果表明，模型的最终性能很大程度上取决于训练数据的质量。数据预处理和特征工程是整个建模流程中的关键步骤，值得投入充足的时间。"

	embedCalls := 0
	embed := func(text string) ([]float32, error) {
		embedCalls++
		return []float32{1, 2, 3}, nil
	}

	t.Run("Process chunks, enriches and embeds", func(t *testing.T) {
		embedCalls = 0
		p := NewPipeline(ParagraphChunker(), embed, testAnalyzer)

		chunks, err := p.Process(text)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 2, embedCalls)
		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk.ChunkID)
			assert.NotEmpty(t, chunk.Keywords)
			assert.NotEmpty(t, chunk.Summary)
			assert.Equal(t, []float32{1, 2, 3}, chunk.Embedding)
			assert.Greater(t, chunk.QualityScore, 0.0)
		}
	})

	t.Run("Batch embedder is preferred over the single embedder", func(t *testing.T) {
		embedCalls = 0
		batchCalls := 0
		p := NewPipeline(ParagraphChunker(), embed, testAnalyzer)
		p.SetBatchEmbedder(func(texts []string) ([][]float32, error) {
			batchCalls++
			embeddings := make([][]float32, len(texts))
			for i := range texts {
				embeddings[i] = []float32{4, 5, 6}
			}
			return embeddings, nil
		})

		chunks, err := p.Process(text)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 1, batchCalls)
		assert.Equal(t, 0, embedCalls)
		assert.Equal(t, []float32{4, 5, 6}, chunks[0].Embedding)
	})

	t.Run("Empty text yields no chunks", func(t *testing.T) {
		p := NewPipeline(ParagraphChunker(), embed, testAnalyzer)

		chunks, err := p.Process("  ")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}
