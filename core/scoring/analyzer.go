package scoring

import (
	"strings"

	"github.com/go-ego/gse"
	"github.com/go-ego/gse/hmm/idf"
	"github.com/siherrmann/docqa/helper"
)

// Analyzer provides dictionary-based segmentation and TF-IDF keyword
// extraction for mixed Chinese/Latin text. A single instance is safe for
// concurrent use once loaded.
type Analyzer struct {
	seg gse.Segmenter
	tag idf.TagExtracter
}

// NewAnalyzer loads the default segmentation dictionary and IDF table
func NewAnalyzer() (*Analyzer, error) {
	a := &Analyzer{}

	if err := a.seg.LoadDict(); err != nil {
		return nil, helper.NewError("load segmenter dictionary", err)
	}

	a.tag.WithGse(a.seg)
	if err := a.tag.LoadIdf(); err != nil {
		return nil, helper.NewError("load idf table", err)
	}

	return a, nil
}

// Tokens segments text into lowercased tokens, dropping whitespace and
// punctuation-only tokens.
func (a *Analyzer) Tokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return a.seg.Trim(a.seg.Cut(strings.ToLower(text), true))
}

// FilteredTokenSet segments text and drops single-character tokens and stop
// words, returning the remaining tokens as a set.
func (a *Analyzer) FilteredTokenSet(text string) map[string]struct{} {
	tokens := a.Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) <= 1 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Keywords extracts the top-n keywords of text by TF-IDF weight
func (a *Analyzer) Keywords(text string, n int) []string {
	if strings.TrimSpace(text) == "" || n <= 0 {
		return nil
	}

	segments := a.tag.ExtractTags(strings.ToLower(text), n)
	keywords := make([]string, 0, len(segments))
	for _, s := range segments {
		keywords = append(keywords, s.Text)
	}
	return keywords
}
