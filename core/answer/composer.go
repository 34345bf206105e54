package answer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/core/pipeline"
	"github.com/siherrmann/docqa/core/retrieval"
	"github.com/siherrmann/docqa/core/scoring"
	"github.com/siherrmann/docqa/model"
)

const (
	noContentMessage = "抱歉，在该文档中未找到与您问题相关的内容。"
	failureMessage   = "处理问题时发生错误，请稍后重试。"

	summaryFailureMessage = "生成摘要时发生错误。"
	emptySummaryMessage   = "无法生成摘要：文档内容为空或未找到。"
)

// Composer builds LLM context from retrieved chunks and scores the generated
// answers. It never surfaces raw errors to callers: failures produce a
// response with Success=false and a generic message.
type Composer struct {
	retriever retrieval.Retriever
	generate  pipeline.GenerateFunc
	analyzer  *scoring.Analyzer
	scorer    *scoring.LexicalScorer
	log       *slog.Logger
}

// NewComposer creates a composer over a retriever and a language model
func NewComposer(retriever retrieval.Retriever, generate pipeline.GenerateFunc, analyzer *scoring.Analyzer, logger *slog.Logger) *Composer {
	return &Composer{
		retriever: retriever,
		generate:  generate,
		analyzer:  analyzer,
		scorer:    scoring.NewLexicalScorer(analyzer),
		log:       logger,
	}
}

// AnswerQuestion retrieves relevant chunks and generates an answer with
// confidence and quality scores.
func (c *Composer) AnswerQuestion(ctx context.Context, documentRID uuid.UUID, question string, k int) *model.Answer {
	start := time.Now()

	results, err := c.retriever.Search(ctx, documentRID, question, k)
	if err != nil {
		c.log.Error("Retrieval failed", slog.String("error", err.Error()))
		return failedAnswer(start, err)
	}

	if len(results) == 0 {
		return &model.Answer{
			Answer:         noContentMessage,
			Confidence:     0,
			Sources:        []model.Source{},
			SearchMethod:   "hybrid",
			ProcessingTime: time.Since(start).Seconds(),
			Success:        true,
		}
	}

	answerText, err := c.generateAnswer(ctx, buildContext(results), question)
	if err != nil {
		c.log.Error("Answer generation failed", slog.String("error", err.Error()))
		return failedAnswer(start, err)
	}
	answerText = strings.TrimSpace(answerText)

	return &model.Answer{
		Answer:         answerText,
		Confidence:     c.confidence(results, question, answerText),
		Sources:        buildSources(results),
		QualityScore:   c.answerQuality(answerText, results),
		SearchMethod:   "hybrid",
		ProcessingTime: time.Since(start).Seconds(),
		Success:        true,
	}
}

func failedAnswer(start time.Time, err error) *model.Answer {
	return &model.Answer{
		Answer:         failureMessage,
		Confidence:     0,
		Sources:        []model.Source{},
		ProcessingTime: time.Since(start).Seconds(),
		Success:        false,
		Error:          err.Error(),
	}
}

// generateAnswer tries the enhanced prompt first and falls back to the basic
// one on failure.
func (c *Composer) generateAnswer(ctx context.Context, contextText string, question string) (string, error) {
	answerText, err := c.generate(ctx, fmt.Sprintf(enhancedQAPrompt, contextText, question))
	if err == nil {
		return answerText, nil
	}

	c.log.Warn("Enhanced prompt failed, retrying with basic prompt", slog.String("error", err.Error()))
	return c.generate(ctx, fmt.Sprintf(basicQAPrompt, contextText, question))
}

// buildContext orders results by similarity x quality and renders them as
// annotated context paragraphs.
func buildContext(results []*model.SearchResult) string {
	ordered := make([]*model.SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SimilarityScore*ordered[i].QualityScore > ordered[j].SimilarityScore*ordered[j].QualityScore
	})

	var b strings.Builder
	for i, r := range ordered {
		fmt.Fprintf(&b, "【文档片段 %d】(相似度: %.3f, 质量: %.2f)\n", i+1, r.SimilarityScore, r.QualityScore)
		if len(r.Keywords) > 0 {
			n := len(r.Keywords)
			if n > 5 {
				n = 5
			}
			fmt.Fprintf(&b, "关键词: %s\n", strings.Join(r.Keywords[:n], ", "))
		}
		fmt.Fprintf(&b, "内容: %s\n\n", r.Content)
	}
	return b.String()
}

func buildSources(results []*model.SearchResult) []model.Source {
	sources := make([]model.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, model.Source{
			ChunkID:         r.ChunkID,
			ChunkIndex:      r.ChunkIndex,
			SimilarityScore: r.SimilarityScore,
			QualityScore:    r.QualityScore,
			Keywords:        r.Keywords,
			Summary:         r.Summary,
			ContentPreview:  preview(r.Content, 200),
			ContentLength:   len([]rune(r.Content)),
		})
	}
	return sources
}

func preview(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "..."
}
