package retrieval

import (
	"sort"

	"github.com/siherrmann/docqa/model"
)

// normalizeScores rescales similarity scores to [0,1] via min-max
// normalization, in place. When all scores are equal they are set to 1.0.
func normalizeScores(results []*model.SearchResult) {
	if len(results) == 0 {
		return
	}

	minScore := results[0].SimilarityScore
	maxScore := results[0].SimilarityScore
	for _, r := range results[1:] {
		if r.SimilarityScore < minScore {
			minScore = r.SimilarityScore
		}
		if r.SimilarityScore > maxScore {
			maxScore = r.SimilarityScore
		}
	}

	if maxScore == minScore {
		for _, r := range results {
			r.SimilarityScore = 1.0
		}
		return
	}

	for _, r := range results {
		r.SimilarityScore = (r.SimilarityScore - minScore) / (maxScore - minScore)
	}
}

// fuseTracks combines the normalized per-track result lists into one list
// with a single fused score per chunk. Results are identified by content;
// a chunk absent from a track contributes 0 for that track. The fused score
// is alpha x vector + (1-alpha) x (share x keyword + (1-share) x semantic),
// clamped to [0,1]. The returned order is first-seen order: vector rank
// first, then keyword-only results, then semantic-only results, which the
// stable rerank sort uses as tie-break.
func fuseTracks(vector, keyword, semantic []*model.SearchResult, alpha, keywordShare float64) []*model.SearchResult {
	type trackScores struct {
		result   *model.SearchResult
		vector   float64
		keyword  float64
		semantic float64
	}

	byContent := make(map[string]*trackScores)
	var order []string

	add := func(results []*model.SearchResult, assign func(*trackScores, float64)) {
		for _, r := range results {
			ts, ok := byContent[r.Content]
			if !ok {
				ts = &trackScores{result: r}
				byContent[r.Content] = ts
				order = append(order, r.Content)
			}
			assign(ts, r.SimilarityScore)
		}
	}

	add(vector, func(ts *trackScores, s float64) { ts.vector = s })
	add(keyword, func(ts *trackScores, s float64) { ts.keyword = s })
	add(semantic, func(ts *trackScores, s float64) { ts.semantic = s })

	fused := make([]*model.SearchResult, 0, len(order))
	for _, content := range order {
		ts := byContent[content]
		score := alpha*ts.vector + (1-alpha)*(keywordShare*ts.keyword + (1-keywordShare)*ts.semantic)
		score = clamp01(score)

		r := ts.result
		r.VectorScore = ts.vector
		r.KeywordScore = ts.keyword
		r.SemanticScore = ts.semantic
		r.SimilarityScore = score
		r.RetrievalMethod = "hybrid"
		fused = append(fused, r)
	}

	return fused
}

// rerank adjusts fused scores with quality and query/content length fit, then
// stable-sorts descending so exact ties keep their fusion order.
func rerank(results []*model.SearchResult, query string, cfg model.SearchConfig) {
	queryLen := len([]rune(query))

	for _, r := range results {
		lengthPreference := 1.0
		contentLen := len([]rune(r.Content))
		if (queryLen < 20 && contentLen > 1000) || (queryLen > 50 && contentLen < 200) {
			lengthPreference = 0.9
		}

		score := r.SimilarityScore*cfg.FusedWeight +
			r.QualityScore*cfg.QualityWeight +
			lengthPreference*cfg.LengthWeight
		r.SimilarityScore = clamp01(score)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
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
