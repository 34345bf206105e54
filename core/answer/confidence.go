package answer

import (
	"strings"

	"github.com/siherrmann/docqa/model"
)

var connectorWords = []string{"因为", "所以", "但是", "然而", "此外", "另外", "首先", "其次", "最后", "总之"}

var hedgingPhrases = []string{"可能", "大概", "据文档显示", "根据资料", "文档中提到"}

const terminalPunctuation = "。！？.!?"

// confidence estimates how well the retrieved evidence supports the answer.
// It combines the best similarity, the quality-weighted mean similarity, the
// evidence count and the textual completeness of the answer.
func (c *Composer) confidence(results []*model.SearchResult, question string, answerText string) float64 {
	if len(results) == 0 {
		return 0
	}

	maxSimilarity := 0.0
	weightedSum := 0.0
	for _, r := range results {
		if r.SimilarityScore > maxSimilarity {
			maxSimilarity = r.SimilarityScore
		}
		weightedSum += r.SimilarityScore * r.QualityScore
	}
	weightedMean := weightedSum / float64(len(results))

	coverage := float64(len(results)) / 3.0
	if coverage > 1 {
		coverage = 1
	}

	score := 0.3*maxSimilarity + 0.3*weightedMean + 0.2*coverage + 0.2*c.completeness(question, answerText)
	return clamp01(score)
}

// completeness rates whether the answer looks like a finished response to the
// question. Very short answers are flagged as incomplete.
func (c *Composer) completeness(question string, answerText string) float64 {
	if len([]rune(answerText)) < 20 {
		return 0.2
	}

	score := 0.5
	if strings.ContainsAny(answerText, terminalPunctuation) {
		score += 0.2
	}
	score += 0.3 * c.scorer.TokenOverlap(question, answerText)

	return clamp01(score)
}

// answerQuality scores the generated answer on length, relevance to the
// retrieved evidence, fluency and grounding.
func (c *Composer) answerQuality(answerText string, results []*model.SearchResult) float64 {
	score := 0.5

	runeLen := len([]rune(answerText))
	switch {
	case runeLen >= 50 && runeLen <= 800:
		score += 0.2
	case (runeLen >= 20 && runeLen <= 49) || (runeLen >= 801 && runeLen <= 1500):
		score += 0.1
	}

	score += 0.3 * c.relevance(answerText, results)
	score += 0.25 * c.fluency(answerText)
	score += 0.25 * c.grounding(answerText, results)

	return clamp01(score)
}

// relevance measures how much of the evidence vocabulary the answer reuses
func (c *Composer) relevance(answerText string, results []*model.SearchResult) float64 {
	answerTokens := c.analyzer.FilteredTokenSet(answerText)
	if len(answerTokens) == 0 {
		return 0
	}

	overlap := 0
	totalWords := 0
	for _, r := range results {
		contentTokens := c.analyzer.FilteredTokenSet(r.Content)
		totalWords += len(contentTokens)
		for token := range answerTokens {
			if _, ok := contentTokens[token]; ok {
				overlap++
			}
		}
	}
	if totalWords == 0 {
		return 0.5
	}

	ratio := float64(overlap) / float64(totalWords) * 5
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// fluency is a cheap readability heuristic: punctuation, discourse connectors
// and lexical diversity.
func (c *Composer) fluency(answerText string) float64 {
	score := 0.5

	if strings.ContainsAny(answerText, "，。！？,.!?") {
		score += 0.2
	}

	for _, connector := range connectorWords {
		if strings.Contains(answerText, connector) {
			score += 0.2
			break
		}
	}

	tokens := c.analyzer.Tokens(answerText)
	if len(tokens) > 0 {
		unique := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			unique[token] = struct{}{}
		}
		if float64(len(unique))/float64(len(tokens)) > 0.7 {
			score += 0.1
		}
	}

	return clamp01(score)
}

// grounding rewards hedged phrasing and literal quotes from the evidence. A
// result counts as quoted when any 20-rune window of the answer appears
// verbatim in its content.
func (c *Composer) grounding(answerText string, results []*model.SearchResult) float64 {
	score := 0.7

	for _, phrase := range hedgingPhrases {
		if strings.Contains(answerText, phrase) {
			score += 0.2
			break
		}
	}

	answerRunes := []rune(answerText)
	for _, r := range results {
		if quotesFrom(answerRunes, r.Content) {
			score += 0.1
		}
	}

	return clamp01(score)
}

func quotesFrom(answerRunes []rune, content string) bool {
	const window = 20
	for i := 0; i+window <= len(answerRunes); i++ {
		if strings.Contains(content, string(answerRunes[i:i+window])) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
