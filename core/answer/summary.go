package answer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/docqa/model"
)

const (
	summaryQueryTopK    = 5
	summarySourceChunks = 8
	maxKeyPoints        = 8
	maxSummaryKeywords  = 15
)

// summaryQueries probe different aspects of a document so the retrieved
// chunks cover content, method and conclusions.
var summaryQueries = []string{
	"文档主要内容 核心观点 关键信息",
	"研究方法 实验结果 重要发现",
	"结论 建议 总结",
}

var keyPointPattern = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.、)]|[一二三四五六七八九十]+[、.])\s*(.+)$`)

var structureWords = []string{"首先", "其次", "最后", "总之", "综上", "第一", "第二", "第三"}

// GenerateSummary retrieves representative chunks with several aspect queries
// and generates a structured document summary with key points and keywords.
func (c *Composer) GenerateSummary(ctx context.Context, documentRID uuid.UUID) *model.Summary {
	chunks := c.collectSummaryChunks(ctx, documentRID)
	if len(chunks) == 0 {
		return &model.Summary{
			Summary:   emptySummaryMessage,
			KeyPoints: []string{},
			Keywords:  []string{},
			Success:   false,
			Error:     "no content found for document",
		}
	}

	summaryText, err := c.generateSummary(ctx, buildSummaryContext(chunks))
	if err != nil {
		c.log.Error("Summary generation failed", slog.String("error", err.Error()))
		return &model.Summary{
			Summary:      summaryFailureMessage,
			KeyPoints:    []string{},
			Keywords:     []string{},
			SourceChunks: len(chunks),
			Success:      false,
			Error:        err.Error(),
		}
	}
	summaryText = strings.TrimSpace(summaryText)

	return &model.Summary{
		Summary:      summaryText,
		KeyPoints:    extractKeyPoints(chunks),
		Keywords:     rankKeywords(chunks),
		QualityScore: c.summaryQuality(summaryText, chunks),
		SourceChunks: len(chunks),
		Success:      true,
	}
}

// collectSummaryChunks runs every aspect query, deduplicates by chunk ID and
// keeps the best chunks by similarity x quality. A failing query is skipped,
// not fatal.
func (c *Composer) collectSummaryChunks(ctx context.Context, documentRID uuid.UUID) []*model.SearchResult {
	seen := make(map[string]struct{})
	var collected []*model.SearchResult

	for _, query := range summaryQueries {
		results, err := c.retriever.Search(ctx, documentRID, query, summaryQueryTopK)
		if err != nil {
			c.log.Warn("Summary query failed, skipping",
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}
		for _, r := range results {
			if _, ok := seen[r.ChunkID]; ok {
				continue
			}
			seen[r.ChunkID] = struct{}{}
			collected = append(collected, r)
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].SimilarityScore*collected[i].QualityScore > collected[j].SimilarityScore*collected[j].QualityScore
	})
	if len(collected) > summarySourceChunks {
		collected = collected[:summarySourceChunks]
	}
	return collected
}

func (c *Composer) generateSummary(ctx context.Context, contextText string) (string, error) {
	summaryText, err := c.generate(ctx, fmt.Sprintf(enhancedSummaryPrompt, contextText))
	if err == nil {
		return summaryText, nil
	}

	c.log.Warn("Enhanced summary prompt failed, retrying with basic prompt", slog.String("error", err.Error()))
	return c.generate(ctx, fmt.Sprintf(basicSummaryPrompt, contextText))
}

// buildSummaryContext renders the chunks grouped into core content (high
// quality) and supplementary content.
func buildSummaryContext(chunks []*model.SearchResult) string {
	var core, supplementary []*model.SearchResult
	for _, chunk := range chunks {
		if chunk.QualityScore > 0.7 {
			core = append(core, chunk)
		} else {
			supplementary = append(supplementary, chunk)
		}
	}

	var b strings.Builder
	writeSection := func(title string, section []*model.SearchResult) {
		if len(section) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for i, chunk := range section {
			fmt.Fprintf(&b, "【片段 %d】%s\n\n", i+1, chunk.Content)
		}
	}
	writeSection("核心内容", core)
	writeSection("补充内容", supplementary)
	return b.String()
}

// extractKeyPoints pulls list items and enumerated lines out of the chunk
// contents, deduplicated and bounded in length.
func extractKeyPoints(chunks []*model.SearchResult) []string {
	seen := make(map[string]struct{})
	var points []string

	for _, chunk := range chunks {
		for _, line := range strings.Split(chunk.Content, "\n") {
			match := keyPointPattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			point := strings.TrimSpace(match[1])
			runeLen := len([]rune(point))
			if runeLen < 10 || runeLen > 200 {
				continue
			}
			if _, ok := seen[point]; ok {
				continue
			}
			seen[point] = struct{}{}
			points = append(points, point)
			if len(points) >= maxKeyPoints {
				return points
			}
		}
	}

	if points == nil {
		return []string{}
	}
	return points
}

// rankKeywords merges the chunks' extracted keywords by frequency
func rankKeywords(chunks []*model.SearchResult) []string {
	frequency := make(map[string]int)
	var order []string
	for _, chunk := range chunks {
		for _, keyword := range chunk.Keywords {
			if frequency[keyword] == 0 {
				order = append(order, keyword)
			}
			frequency[keyword]++
		}
	}

	// Stable sort on first-seen order keeps equal-frequency keywords in
	// document order.
	sort.SliceStable(order, func(i, j int) bool {
		return frequency[order[i]] > frequency[order[j]]
	})

	if len(order) > maxSummaryKeywords {
		order = order[:maxSummaryKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// summaryQuality scores the generated summary on length, coverage of the
// source chunks, structure and fluency.
func (c *Composer) summaryQuality(summaryText string, chunks []*model.SearchResult) float64 {
	score := 0.5

	runeLen := len([]rune(summaryText))
	switch {
	case runeLen >= 200 && runeLen <= 800:
		score += 0.25
	case (runeLen >= 100 && runeLen <= 199) || (runeLen >= 801 && runeLen <= 1200):
		score += 0.15
	}

	score += 0.3 * c.summaryCoverage(summaryText, chunks)
	score += 0.25 * summaryStructure(summaryText)
	score += 0.2 * c.fluency(summaryText)

	return clamp01(score)
}

// summaryCoverage measures how much of the top source vocabulary the summary
// mentions.
func (c *Composer) summaryCoverage(summaryText string, chunks []*model.SearchResult) float64 {
	sourceTokens := make(map[string]struct{})
	limit := len(chunks)
	if limit > 5 {
		limit = 5
	}
	for _, chunk := range chunks[:limit] {
		for token := range c.analyzer.FilteredTokenSet(chunk.Content) {
			sourceTokens[token] = struct{}{}
		}
	}
	if len(sourceTokens) == 0 {
		return 0
	}

	summaryTokens := c.analyzer.FilteredTokenSet(summaryText)
	overlap := 0
	for token := range summaryTokens {
		if _, ok := sourceTokens[token]; ok {
			overlap++
		}
	}

	ratio := float64(overlap) / float64(len(sourceTokens)) * 3
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func summaryStructure(summaryText string) float64 {
	score := 0.3

	if len(strings.Split(summaryText, "\n\n")) >= 2 {
		score += 0.3
	}
	for _, word := range structureWords {
		if strings.Contains(summaryText, word) {
			score += 0.2
			break
		}
	}
	if strings.Count(summaryText, "。") >= 3 {
		score += 0.2
	}

	return clamp01(score)
}
