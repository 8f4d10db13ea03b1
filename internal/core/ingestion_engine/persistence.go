package ingestion_engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/lexicon"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const (
	summaryRunes = 1000
	maxTopicTags = 8
)

// ocrDetails is stored as the document's ocr_metadata.
type ocrDetails struct {
	Provider         models.Provider    `json:"provider"`
	TotalPages       int                `json:"total_pages"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	ConfidenceScore  float64            `json:"confidence_score"`
	VisionLabel      models.VisionLabel `json:"vision_label,omitempty"`
	Reason           string             `json:"reason"`
	Enriched         bool               `json:"enriched"`
}

// indexInput is what a finished run hands to BuildIndex.
type indexInput struct {
	Document   models.Document
	Job        models.IngestJob // already moved to completed
	Decision   models.RoutingDecision
	Normalized *models.NormalizedDocument
	Chunks     []models.VectorizedChunk
	Enriched   bool
	Now        time.Time
}

// BuildIndex assigns ids and assembles every row one run writes.
func BuildIndex(in indexInput) (*models.DocumentIndex, error) {
	totalPages := in.Normalized.Metadata.TotalPages
	if n := len(in.Normalized.Pages); n > totalPages {
		totalPages = n
	}

	root := models.OutlineNode{
		ID:         uuid.NewString(),
		DocumentID: in.Document.ID,
		Path:       "/",
		Title:      in.Document.Title,
		Level:      0,
		Ordering:   0,
		EndPage:    totalPages,
		ChildCount: len(in.Chunks),
	}
	if totalPages > 0 {
		root.StartPage = 1
	}

	var (
		parents  = make([]models.ContextChunk, 0, len(in.Chunks))
		children []models.RetrievalChunk
		texts    = make([]string, 0, len(in.Chunks))
	)
	for _, ch := range in.Chunks {
		semantic := models.SemanticNarrative
		if ch.IsTable {
			semantic = models.SemanticTabular
		}
		parent := models.ContextChunk{
			ID:            uuid.NewString(),
			DocumentID:    in.Document.ID,
			OutlineNodeID: root.ID,
			Content:       ch.Content,
			TokenCount:    ch.TokenCount,
			CharCount:     len([]rune(ch.Content)),
			Embedding:     ch.Embedding,
			PageNumber:    ch.PageNumber,
			SemanticType:  semantic,
			ContentHash:   ch.ContentHash,
		}
		root.TokenCount += ch.TokenCount
		parents = append(parents, parent)
		texts = append(texts, ch.Content)

		for _, child := range ch.Children {
			children = append(children, models.RetrievalChunk{
				ID:             uuid.NewString(),
				ContextChunkID: parent.ID,
				DocumentID:     in.Document.ID,
				Content:        child.Content,
				TokenCount:     child.TokenCount,
				Embedding:      child.Embedding,
				EmbeddingShort: child.EmbeddingShort,
			})
		}
	}

	outline := make([]models.OutlineEntry, 0, totalPages)
	for p := 1; p <= totalPages; p++ {
		outline = append(outline, models.OutlineEntry{Page: p, Title: fmt.Sprintf("Page %d", p)})
	}

	meta := in.Normalized.Metadata
	details, err := json.Marshal(ocrDetails{
		Provider:         meta.Provider,
		TotalPages:       totalPages,
		ProcessingTimeMs: meta.ProcessingTimeMs,
		ConfidenceScore:  meta.ConfidenceScore,
		VisionLabel:      in.Decision.VisionLabel,
		Reason:           in.Decision.Reason,
		Enriched:         in.Enriched,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ocr metadata: %w", err)
	}

	doc := in.Document
	doc.OCRProcessed = true
	doc.OCRProvider = string(meta.Provider)
	doc.OCRConfidence = meta.ConfidenceScore
	doc.OCRMetadata = details
	doc.UpdatedAt = in.Now

	return &models.DocumentIndex{
		Document: doc,
		Job:      in.Job,
		Root:     root,
		Parents:  parents,
		Children: children,
		Metadata: models.DocumentIndexMetadata{
			DocumentID:    in.Document.ID,
			Summary:       summarize(texts),
			Outline:       outline,
			TotalTokens:   root.TokenCount,
			TotalPages:    totalPages,
			TotalSections: 1,
			TopicTags:     nonNil(lexicon.TopTerms(texts, maxTopicTags)),
			Entities:      []models.Entity{},
		},
		OCRDetails: meta,
	}, nil
}

// summarize returns the first summaryRunes runes of the concatenated chunk text.
func summarize(texts []string) string {
	r := []rune(strings.Join(texts, "\n\n"))
	if len(r) > summaryRunes {
		r = r[:summaryRunes]
	}
	return strings.TrimSpace(string(r))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
