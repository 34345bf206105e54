package pipeline

import (
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/docqa/helper"
)

// EmbeddingModel is the default sentence transformer, producing
// 384-dimensional embeddings.
const EmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultEmbedder creates single-text and batch embedding functions backed by
// a local ONNX sentence transformer session. The model is downloaded on first
// use.
func DefaultEmbedder() (EmbedFunc, EmbedBatchFunc, error) {
	modelPath, err := helper.PrepareModel(EmbeddingModel)
	if err != nil {
		return nil, nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "docqa-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	embedMany := func(texts []string) ([][]float32, error) {
		if len(texts) == 0 {
			return nil, nil
		}
		result, err := sentencePipeline.RunPipeline(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(result.Embeddings) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
		}
		return result.Embeddings, nil
	}

	embedOne := func(text string) ([]float32, error) {
		embeddings, err := embedMany([]string{text})
		if err != nil {
			return nil, err
		}
		if len(embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return embeddings[0], nil
	}

	return embedOne, embedMany, nil
}
