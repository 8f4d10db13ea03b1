package ingestion_engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/mocks"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestShouldEnrich(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := NewEnricher(mocks.NewMockPageRenderer(ctrl), mocks.NewMockVisionDescriber(ctrl), DefaultEnrichmentConfig(), nil)

	doc := func(conf float64) *models.NormalizedDocument {
		return &models.NormalizedDocument{Metadata: models.NormalizationMetadata{ConfidenceScore: conf}}
	}
	pdf := "application/pdf"

	tests := []struct {
		name     string
		decision models.RoutingDecision
		doc      *models.NormalizedDocument
		want     bool
	}{
		{"complex pdf", models.RoutingDecision{MimeType: pdf, VisionLabel: models.LabelComplex}, doc(0.95), true},
		{"handwritten pdf", models.RoutingDecision{MimeType: pdf, VisionLabel: models.LabelHandwritten}, doc(0.95), true},
		{"low confidence pdf", models.RoutingDecision{MimeType: pdf, VisionLabel: models.LabelClean}, doc(0.55), true},
		{"clean confident pdf", models.RoutingDecision{MimeType: pdf, VisionLabel: models.LabelClean}, doc(0.9), false},
		{"native pdf", models.RoutingDecision{MimeType: pdf, IsNativePDF: true}, doc(1), false},
		{"complex image", models.RoutingDecision{MimeType: "image/png", VisionLabel: models.LabelComplex}, doc(0.4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ShouldEnrich(tt.decision, tt.doc))
		})
	}

	disabled := NewEnricher(nil, nil, DefaultEnrichmentConfig(), nil)
	assert.False(t, disabled.ShouldEnrich(tests[0].decision, tests[0].doc))
}

func TestEnrich_AppendsDescriptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockPageRenderer(ctrl)
	describer := mocks.NewMockVisionDescriber(ctrl)

	renderer.EXPECT().RenderPages(gomock.Any(), []byte("%PDF"), 1, 2).Return([][]byte{[]byte("p1"), []byte("p2")}, nil)
	describer.EXPECT().DescribePage(gomock.Any(), []byte("p1"), "image/png").Return("A bar chart of revenue.", nil)
	describer.EXPECT().DescribePage(gomock.Any(), []byte("p2"), "image/png").Return("", errors.New("safety block"))

	doc := &models.NormalizedDocument{
		Pages:    []models.PageContent{{PageNumber: 1, TextBlocks: []string{"Revenue"}}, {PageNumber: 2, TextBlocks: []string{"Costs"}}},
		Metadata: models.NormalizationMetadata{TotalPages: 2},
	}

	err := NewEnricher(renderer, describer, DefaultEnrichmentConfig(), nil).Enrich(context.Background(), []byte("%PDF"), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEnrichment)
	assert.False(t, core.IsFatal(err))

	assert.Equal(t, []string{"Revenue", "[Visual description] A bar chart of revenue."}, doc.Pages[0].TextBlocks)
	assert.Equal(t, []string{"Costs"}, doc.Pages[1].TextBlocks)
}

func TestEnrich_RenderFailureLeavesPagesUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockPageRenderer(ctrl)
	describer := mocks.NewMockVisionDescriber(ctrl)
	renderer.EXPECT().RenderPages(gomock.Any(), gomock.Any(), 1, 5).Return(nil, errors.New("pdftoppm: not found"))

	doc := &models.NormalizedDocument{Metadata: models.NormalizationMetadata{TotalPages: 12}}
	for i := 1; i <= 12; i++ {
		doc.Pages = append(doc.Pages, models.PageContent{PageNumber: i, TextBlocks: []string{"x"}})
	}

	err := NewEnricher(renderer, describer, DefaultEnrichmentConfig(), nil).Enrich(context.Background(), nil, doc)
	assert.ErrorIs(t, err, core.ErrEnrichment)
	for _, p := range doc.Pages {
		assert.Equal(t, []string{"x"}, p.TextBlocks)
	}
}
