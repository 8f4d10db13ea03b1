package core

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ai.go -package=mocks github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core EmbeddingProvider,VisionClassifier,VisionDescriber,Reranker,EntityExtractor

import (
	"context"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// EmbeddingProvider embeds document chunks and search queries into the same space.
type EmbeddingProvider interface {
	// EmbedTexts returns one document-side vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VisionClassifier labels a rendered page so the router can pick an OCR provider.
type VisionClassifier interface {
	ClassifyPage(ctx context.Context, image []byte, mimeType string) (models.VisionLabel, error)
}

// VisionDescriber returns a natural-language description of a rendered page.
type VisionDescriber interface {
	DescribePage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Reranker scores documents against a query; higher is more relevant.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// EntityExtractor finds named entities in each chunk.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, chunks []string) ([][]models.Entity, error)
}
