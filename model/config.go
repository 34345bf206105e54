package model

import "time"

// SearchConfig represents configuration for a hybrid retrieval query
type SearchConfig struct {
	// TopK is the number of results returned to the caller.
	TopK int `json:"top_k"`
	// Alpha weights the vector track against the lexical tracks in fusion.
	Alpha float64 `json:"alpha"`
	// KeywordShare splits the non-vector remainder between the keyword and
	// semantic tracks. The semantic track receives 1-KeywordShare.
	KeywordShare float64 `json:"keyword_share"`
	// SemanticThreshold filters semantic-feature matches below this score.
	SemanticThreshold float64 `json:"semantic_threshold"`

	// Rerank weights applied after fusion.
	FusedWeight   float64 `json:"fused_weight"`
	QualityWeight float64 `json:"quality_weight"`
	LengthWeight  float64 `json:"length_weight"`

	// CacheTTL bounds the age of cached vector-search results.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultSearchConfig returns the default retrieval configuration
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		TopK:              5,
		Alpha:             0.7,
		KeywordShare:      0.6,
		SemanticThreshold: 0.1,
		FusedWeight:       0.7,
		QualityWeight:     0.2,
		LengthWeight:      0.1,
		CacheTTL:          time.Hour,
	}
}
