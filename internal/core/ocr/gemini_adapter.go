package ocr

import (
	"context"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// DocumentTranscriber reads a whole document with a multimodal model and
// returns its pages and a self-reported confidence in [0, 1].
type DocumentTranscriber interface {
	TranscribeDocument(ctx context.Context, data []byte, mimeType string) ([]models.PageContent, float64, error)
}

// GeminiAdapter normalizes handwritten and complex-layout scans through a vision model.
type GeminiAdapter struct {
	transcriber DocumentTranscriber
}

var _ core.Normalizer = (*GeminiAdapter)(nil)

func NewGeminiAdapter(t DocumentTranscriber) *GeminiAdapter {
	return &GeminiAdapter{transcriber: t}
}

func (a *GeminiAdapter) NormalizeDocument(ctx context.Context, src core.Source) (*models.NormalizedDocument, error) {
	start := time.Now()
	pages, conf, err := a.transcriber.TranscribeDocument(ctx, src.Data, ResolveMimeType(src))
	if err != nil {
		return nil, core.Wrap(core.ErrProvider, "gemini", err)
	}
	for i := range pages {
		if pages[i].PageNumber < 1 {
			pages[i].PageNumber = i + 1
		}
	}
	return &models.NormalizedDocument{
		Pages: pages,
		Metadata: models.NormalizationMetadata{
			Provider:         models.ProviderGemini,
			TotalPages:       len(pages),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			ConfidenceScore:  conf,
		},
	}, nil
}
