package pipeline

import (
	"strings"

	"github.com/siherrmann/docqa/model"
)

const (
	chunkKeywordCount = 10
	summaryMaxRunes   = 120
)

// enrich turns a draft into a full chunk with derived keywords, summary and
// the static ingestion quality score.
func (p *Pipeline) enrich(draft Draft) *model.Chunk {
	return &model.Chunk{
		ChunkID:      model.NewChunkID(draft.Content, draft.ChunkIndex),
		Content:      draft.Content,
		ChunkIndex:   draft.ChunkIndex,
		Keywords:     p.analyzer.Keywords(draft.Content, chunkKeywordCount),
		Summary:      leadingSummary(draft.Content, summaryMaxRunes),
		QualityScore: p.ingestionQuality(draft.Content),
		Metadata:     model.Metadata{},
	}
}

// leadingSummary takes whole leading sentences up to maxRunes, falling back
// to a hard cut when the first sentence alone is longer.
func leadingSummary(content string, maxRunes int) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= maxRunes {
		return string(runes)
	}

	lastEnd := -1
	for i := 0; i < maxRunes; i++ {
		switch runes[i] {
		case '。', '！', '？', '.', '!', '?':
			lastEnd = i
		}
	}
	if lastEnd > 0 {
		return string(runes[:lastEnd+1])
	}
	return string(runes[:maxRunes])
}

// ingestionQuality assigns the static chunk quality signal in [0,1] from
// length, sentence structure and token diversity.
func (p *Pipeline) ingestionQuality(content string) float64 {
	quality := 0.5

	length := len([]rune(content))
	switch {
	case length >= 100 && length <= 1000:
		quality += 0.2
	case (length >= minChunkLength && length < 100) || (length > 1000 && length <= 1500):
		quality += 0.1
	}

	if strings.ContainsAny(content, "。！？.!?") {
		quality += 0.15
	}

	tokens := p.analyzer.Tokens(content)
	if len(tokens) > 0 {
		unique := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			unique[token] = struct{}{}
		}
		quality += 0.15 * float64(len(unique)) / float64(len(tokens))
	}

	if quality > 1.0 {
		quality = 1.0
	}
	return quality
}
