package scoring

import (
	"math"
	"regexp"
	"unicode"
)

const featureKeywordCount = 10

var (
	listMarkerPattern = regexp.MustCompile(`(?m)^\s*([-*•]|\d+[.、．)]|[一二三四五六七八九十]+[、.．)])\s*\S`)
	headingPattern    = regexp.MustCompile(`(?m)^\s*(第[一二三四五六七八九十百\d]+[章节部分篇条]|[一二三四五六七八九十]+、|\d+(\.\d+)+\s)`)
)

// sentence-terminal punctuation, CJK and Latin
var sentenceEnders = map[rune]struct{}{
	'。': {}, '！': {}, '？': {},
	'.': {}, '!': {}, '?': {},
}

// Features is a lightweight structural and keyword fingerprint of a text
type Features struct {
	Keywords      []string
	Length        int
	CJKCount      int
	DigitCount    int
	PunctCount    int
	HasList       bool
	HasHeading    bool
	SentenceCount int
}

// FeatureExtractor derives semantic features from text
type FeatureExtractor struct {
	analyzer *Analyzer
}

// NewFeatureExtractor creates a feature extractor on top of an analyzer
func NewFeatureExtractor(analyzer *Analyzer) *FeatureExtractor {
	return &FeatureExtractor{analyzer: analyzer}
}

// Extract computes the semantic feature fingerprint of a text
func (e *FeatureExtractor) Extract(text string) Features {
	f := Features{
		Keywords:   e.analyzer.Keywords(text, featureKeywordCount),
		HasList:    listMarkerPattern.MatchString(text),
		HasHeading: headingPattern.MatchString(text),
	}

	for _, r := range text {
		f.Length++
		switch {
		case unicode.Is(unicode.Han, r):
			f.CJKCount++
		case unicode.IsDigit(r):
			f.DigitCount++
		case unicode.IsPunct(r):
			f.PunctCount++
		}
		if _, ok := sentenceEnders[r]; ok {
			f.SentenceCount++
		}
	}

	return f
}

// FeatureSimilarity scores how similar two feature fingerprints are in [0,1]:
// keyword Jaccard similarity x0.6 (0 if either keyword set is empty),
// structural field match ratio x0.2 and length similarity x0.2.
func FeatureSimilarity(a Features, b Features) float64 {
	score := keywordJaccard(a.Keywords, b.Keywords) * 0.6
	score += structureMatchRatio(a, b) * 0.2
	score += lengthSimilarity(a.Length, b.Length) * 0.2
	return math.Max(0, math.Min(score, 1.0))
}

func keywordJaccard(a []string, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aSet := make(map[string]struct{}, len(a))
	for _, kw := range a {
		aSet[kw] = struct{}{}
	}
	bSet := make(map[string]struct{}, len(b))
	for _, kw := range b {
		bSet[kw] = struct{}{}
	}

	intersection := 0
	for kw := range aSet {
		if _, ok := bSet[kw]; ok {
			intersection++
		}
	}

	union := len(aSet) + len(bSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// structureMatchRatio is the fraction of the three structure fields that are
// equal between two fingerprints.
func structureMatchRatio(a Features, b Features) float64 {
	matches := 0
	if a.HasList == b.HasList {
		matches++
	}
	if a.HasHeading == b.HasHeading {
		matches++
	}
	if a.SentenceCount == b.SentenceCount {
		matches++
	}
	return float64(matches) / 3.0
}

func lengthSimilarity(a int, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	longer := math.Max(float64(a), float64(b))
	return 1 - math.Abs(float64(a)-float64(b))/longer
}
