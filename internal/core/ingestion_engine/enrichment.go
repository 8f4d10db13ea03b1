package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const visualDescriptionPrefix = "[Visual description] "

// Enricher appends vision-model descriptions to the first pages of complex PDFs.
type Enricher struct {
	renderer  core.PageRenderer
	describer core.VisionDescriber
	cfg       EnrichmentConfig
	log       *slog.Logger
}

func NewEnricher(renderer core.PageRenderer, describer core.VisionDescriber, cfg EnrichmentConfig, log *slog.Logger) *Enricher {
	if log == nil {
		log = slog.Default()
	}
	return &Enricher{renderer: renderer, describer: describer, cfg: cfg, log: log}
}

// ShouldEnrich reports whether a routed and normalized document qualifies for enrichment.
func (e *Enricher) ShouldEnrich(decision models.RoutingDecision, doc *models.NormalizedDocument) bool {
	if e == nil || !e.cfg.Enabled || e.renderer == nil || e.describer == nil || doc == nil {
		return false
	}
	if decision.MimeType != "application/pdf" {
		return false
	}
	if decision.VisionLabel == models.LabelComplex || decision.VisionLabel == models.LabelHandwritten {
		return true
	}
	return doc.Metadata.ConfidenceScore < e.cfg.ConfidenceThreshold
}

// Enrich adds a description block to each of the first MaxPages pages of pdf.
// Pages whose description fails are left untouched; the failures are returned as an
// ErrEnrichment error for the caller to log.
func (e *Enricher) Enrich(ctx context.Context, pdf []byte, doc *models.NormalizedDocument) error {
	last := e.cfg.MaxPages
	if n := max(doc.Metadata.TotalPages, len(doc.Pages)); n > 0 && n < last {
		last = n
	}
	if last <= 0 {
		return nil
	}

	images, err := e.renderer.RenderPages(ctx, pdf, 1, last)
	if err != nil {
		return core.Wrap(core.ErrEnrichment, "render pages", err)
	}

	descriptions := make([]string, len(images))
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, img := range images {
		g.Go(func() error {
			desc, err := e.describer.DescribePage(gctx, img, "image/png")
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("page %d: %w", i+1, err))
				mu.Unlock()
				return nil
			}
			descriptions[i] = strings.TrimSpace(desc)
			return nil
		})
	}
	_ = g.Wait()

	added := 0
	for i, desc := range descriptions {
		if desc == "" {
			continue
		}
		appendBlock(doc, i+1, visualDescriptionPrefix+desc)
		added++
	}
	e.log.Debug("enriched pages", "described", added, "rendered", len(images))

	if len(errs) > 0 {
		return core.Wrap(core.ErrEnrichment, "describe pages", errors.Join(errs...))
	}
	return nil
}

func appendBlock(doc *models.NormalizedDocument, page int, block string) {
	for i := range doc.Pages {
		if doc.Pages[i].PageNumber == page {
			doc.Pages[i].TextBlocks = append(doc.Pages[i].TextBlocks, block)
			return
		}
	}
	doc.Pages = append(doc.Pages, models.PageContent{PageNumber: page, TextBlocks: []string{block}})
}
