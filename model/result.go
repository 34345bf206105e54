package model

// SearchResult represents a chunk retrieved for a query. It is produced fresh
// per query; SimilarityScore changes meaning across pipeline stages (raw
// similarity, normalized [0,1], fused score) but higher always means more
// relevant at the time of comparison. Results with equal Content are treated
// as the same chunk when lists from different search tracks are fused.
type SearchResult struct {
	Content         string   `json:"content"`
	ChunkID         string   `json:"chunk_id"`
	ChunkIndex      int      `json:"chunk_index"`
	Keywords        []string `json:"keywords,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	QualityScore    float64  `json:"quality_score"`
	SimilarityScore float64  `json:"similarity_score"`
	// Per-track scores after normalization, kept for inspection and tests.
	VectorScore     float64 `json:"vector_score,omitempty"`
	KeywordScore    float64 `json:"keyword_score,omitempty"`
	SemanticScore   float64 `json:"semantic_score,omitempty"`
	RetrievalMethod string  `json:"retrieval_method,omitempty"`
}

// Clone returns a copy of the result so per-stage score rewrites never mutate
// lists the caller still holds.
func (r *SearchResult) Clone() *SearchResult {
	c := *r
	if r.Keywords != nil {
		c.Keywords = append([]string(nil), r.Keywords...)
	}
	return &c
}

// ResultFromChunk builds a search result from a stored chunk and a score.
func ResultFromChunk(chunk *Chunk, score float64, method string) *SearchResult {
	return &SearchResult{
		Content:         chunk.Content,
		ChunkID:         chunk.ChunkID,
		ChunkIndex:      chunk.ChunkIndex,
		Keywords:        append([]string(nil), chunk.Keywords...),
		Summary:         chunk.Summary,
		QualityScore:    chunk.QualityScore,
		SimilarityScore: score,
		RetrievalMethod: method,
	}
}
