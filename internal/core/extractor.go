package core

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core Normalizer,PageRenderer,Router,SourceFetcher

import (
	"context"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Source is a fetched document handed to routing and normalization.
type Source struct {
	URL      string
	Name     string
	MimeType string
	Data     []byte
}

// Normalizer converts a source document into pages of text blocks and tables.
type Normalizer interface {
	NormalizeDocument(ctx context.Context, src Source) (*models.NormalizedDocument, error)
}

// Router decides how a source is normalized.
type Router interface {
	Route(ctx context.Context, src Source, opts models.RouteOptions) (models.RoutingDecision, error)
}

// PageRenderer rasterizes pages [first, last] (1-based, inclusive) of a PDF to PNG.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdf []byte, first, last int) ([][]byte, error)
}

// SourceFetcher resolves a document URL to its bytes and reported content type.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}
