package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/docqa"
	"github.com/siherrmann/docqa/helper"
	"github.com/siherrmann/docqa/model"
)

const sampleContent = `机器学习是人工智能的一个重要分支。

机器学习方法通过数据训练模型，让计算机从经验中学习。常见的算法包括决策树、支持向量机和神经网络。
深度学习是机器学习的一个子领域，使用多层神经网络处理复杂的模式识别任务。

实验结果表明，模型的性能很大程度上取决于训练数据的质量和数量。
因此，数据预处理和特征工程是机器学习流程中的关键步骤。

总之，机器学习已经在图像识别、自然语言处理和推荐系统等领域取得了显著成果。`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	d, err := docqa.NewDocQA(dbConfig, model.DefaultSearchConfig(), 384)
	if err != nil {
		log.Fatalf("Failed to create docqa: %v", err)
	}
	defer d.Close()

	// Set up the default pipeline (chunking + enrichment + embeddings)
	if err := d.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Create document with content
	doc := &model.Document{
		Title:   "机器学习简介",
		Source:  "basic_example",
		Content: sampleContent,
		Metadata: model.Metadata{
			"author": "Example Author",
			"topic":  "machine learning",
		},
	}

	// Process and insert document in one call
	fmt.Println("Ingesting document...")
	numChunks, err := d.ProcessAndInsertDocument(doc)
	if err != nil {
		log.Fatalf("Failed to process and insert document: %v", err)
	}
	fmt.Printf("Document inserted with RID: %s\n", doc.RID)
	fmt.Printf("Inserted %d chunks\n", numChunks)

	// Perform a hybrid search scoped to the document
	queryText := "机器学习有哪些方法？"

	fmt.Printf("\nQuerying: %s\n", queryText)

	results, err := d.HybridSearch(context.Background(), doc.RID, queryText, 3)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	// Display results
	fmt.Printf("\nFound %d results:\n", len(results))
	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Score: %.4f (vector %.3f, keyword %.3f, semantic %.3f)\n",
			result.SimilarityScore, result.VectorScore, result.KeywordScore, result.SemanticScore)
		fmt.Printf("Content: %s\n", result.Content)
		fmt.Printf("Method: %s\n", result.RetrievalMethod)
	}

	fmt.Println("\nBasic example completed successfully!")
}
