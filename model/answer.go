package model

// Source describes a retrieved chunk that contributed to an answer.
type Source struct {
	ChunkID         string   `json:"chunk_id"`
	ChunkIndex      int      `json:"chunk_index"`
	SimilarityScore float64  `json:"similarity_score"`
	QualityScore    float64  `json:"quality_score"`
	Keywords        []string `json:"keywords,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	ContentPreview  string   `json:"content_preview"`
	ContentLength   int      `json:"content_length"`
}

// Answer is the response object for a document question. It is always
// returned as a value, never replaced by a raw error: failures set
// Success=false and a generic human-readable message.
type Answer struct {
	Answer         string   `json:"answer"`
	Confidence     float64  `json:"confidence"`
	Sources        []Source `json:"sources"`
	QualityScore   float64  `json:"quality_score"`
	SearchMethod   string   `json:"search_method"`
	ProcessingTime float64  `json:"processing_time"`
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
}

// Summary is the response object for document summarization.
type Summary struct {
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	Keywords     []string `json:"keywords"`
	QualityScore float64  `json:"quality_score"`
	SourceChunks int      `json:"source_chunks"`
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
}
