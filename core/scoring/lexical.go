package scoring

import (
	"math"
	"strings"

	"github.com/siherrmann/docqa/model"
)

// LexicalScorer computes token-set similarity between a query and chunk text
type LexicalScorer struct {
	analyzer *Analyzer
}

// NewLexicalScorer creates a lexical scorer on top of an analyzer
func NewLexicalScorer(analyzer *Analyzer) *LexicalScorer {
	return &LexicalScorer{analyzer: analyzer}
}

// Score computes the lexical similarity between content and query in [0,1].
// Both strings are segmented and filtered (single characters and stop words
// dropped); the score is the Jaccard similarity of the token sets plus an
// exact-substring-match bonus (x0.5) and a query-coverage bonus (x0.3),
// capped at 1.0. An empty filtered query or an empty token intersection
// yields 0.
func (s *LexicalScorer) Score(content string, query string) float64 {
	if content == "" || query == "" {
		return 0
	}

	queryTokens := s.analyzer.FilteredTokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}

	contentTokens := s.analyzer.FilteredTokenSet(content)

	intersection := 0
	for token := range queryTokens {
		if _, ok := contentTokens[token]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}

	union := len(queryTokens) + len(contentTokens) - intersection
	jaccard := float64(intersection) / float64(union)

	loweredContent := strings.ToLower(content)
	exactMatches := 0
	for token := range queryTokens {
		if strings.Contains(loweredContent, token) {
			exactMatches++
		}
	}
	exactMatchBonus := float64(exactMatches) / float64(len(queryTokens)) * 0.5
	coverageBonus := float64(intersection) / float64(len(queryTokens)) * 0.3

	return math.Min(jaccard+exactMatchBonus+coverageBonus, 1.0)
}

// ScoreChunk scores a stored chunk against a query for the keyword search
// track. On top of the content score it adds a keyword-field overlap bonus
// (x0.3) and a summary-field lexical score (x0.2), then weighs the total by
// chunk quality (0.8 + quality x 0.4). The result is not clamped; the
// orchestrator normalizes per-track scores before fusion.
func (s *LexicalScorer) ScoreChunk(chunk *model.Chunk, query string) float64 {
	if chunk == nil {
		return 0
	}

	base := s.Score(chunk.Content, query)
	keywordBonus := s.keywordFieldOverlap(chunk.Keywords, query) * 0.3
	summaryBonus := s.Score(chunk.Summary, query) * 0.2

	qualityWeight := 0.8 + chunk.QualityScore*0.4
	return (base + keywordBonus + summaryBonus) * qualityWeight
}

// keywordFieldOverlap returns the fraction of filtered query tokens present
// in the chunk's extracted keywords. Failures default to 0.
func (s *LexicalScorer) keywordFieldOverlap(keywords []string, query string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	queryTokens := s.analyzer.FilteredTokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}

	keywordSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		keywordSet[strings.ToLower(kw)] = struct{}{}
	}

	matched := 0
	for token := range queryTokens {
		if _, ok := keywordSet[token]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(queryTokens))
}

// TokenOverlap returns |a∩b|/|a| for the filtered token sets of two texts,
// 0 if either set is empty. Used by answer confidence and quality scoring.
func (s *LexicalScorer) TokenOverlap(a string, b string) float64 {
	aTokens := s.analyzer.FilteredTokenSet(a)
	bTokens := s.analyzer.FilteredTokenSet(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	matched := 0
	for token := range aTokens {
		if _, ok := bTokens[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(aTokens))
}
