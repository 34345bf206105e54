package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk represents a retrievable slice of a document. Content, ChunkID and
// QualityScore are assigned once at ingestion and never updated afterwards;
// chunks are deleted only together with their owning document.
type Chunk struct {
	ID          int       `json:"id"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	// ChunkID is a stable hash derived from content and index.
	ChunkID    string   `json:"chunk_id"`
	Content    string   `json:"content"`
	ChunkIndex int      `json:"chunk_index"`
	Keywords   []string `json:"keywords,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	// QualityScore is a static ingestion-time signal in [0,1].
	QualityScore float64   `json:"quality_score"`
	Embedding    []float32 `json:"embedding,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	// Similarity is set on chunks returned from a similarity search.
	Similarity *float64 `json:"similarity,omitempty"`
}

// NewChunkID derives the stable chunk identifier from content and index.
func NewChunkID(content string, index int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", content, index)))
	return hex.EncodeToString(sum[:])
}
