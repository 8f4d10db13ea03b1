package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// RouterConfig tunes the native-PDF heuristic.
type RouterConfig struct {
	// NativeMinCharsPerPage is the mean text-layer density at which a PDF
	// is read natively instead of being sent to OCR.
	NativeMinCharsPerPage int
}

// Router decides which adapter normalizes a source.
//
// Text-based formats always go native. PDFs go native when their text layer is
// dense enough, unless OCR is forced. Everything else is classified from a
// rendered sample page: handwritten and complex layouts go to the vision model,
// the rest to the layout service.
type Router struct {
	classifier core.VisionClassifier
	renderer   core.PageRenderer
	cfg        RouterConfig
	log        *slog.Logger
}

var _ core.Router = (*Router)(nil)

// NewRouter builds a router. classifier and renderer may be nil, in which case
// scanned inputs are routed as clean pages.
func NewRouter(classifier core.VisionClassifier, renderer core.PageRenderer, cfg RouterConfig, log *slog.Logger) *Router {
	if cfg.NativeMinCharsPerPage <= 0 {
		cfg.NativeMinCharsPerPage = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{classifier: classifier, renderer: renderer, cfg: cfg, log: log}
}

func (r *Router) Route(ctx context.Context, src core.Source, opts models.RouteOptions) (models.RoutingDecision, error) {
	if len(src.Data) == 0 {
		return models.RoutingDecision{}, core.Errorf(core.ErrRouting, "route", "source %q is empty", src.Name)
	}
	switch opts.PreferredProvider {
	case "", models.ProviderNative, models.ProviderAzure, models.ProviderGemini, models.ProviderTesseract:
	default:
		return models.RoutingDecision{}, core.Errorf(core.ErrRouting, "route", "unknown provider %q", opts.PreferredProvider)
	}

	mimeType := ResolveMimeType(src)
	kind := kindOf(mimeType)
	d := models.RoutingDecision{MimeType: mimeType}

	var reason string
	switch kind {
	case kindUnsupported:
		return d, core.Errorf(core.ErrRouting, "route", "unsupported document type %q", mimeType)
	case kindPDF:
		pages, err := pdfPages(src.Data)
		if err != nil {
			return d, core.Wrap(core.ErrRouting, "route", err)
		}
		if len(pages) == 0 {
			return d, core.Errorf(core.ErrRouting, "route", "pdf has no pages")
		}
		d.PageCount = len(pages)
		density := textLayerDensity(pages)
		if density >= r.cfg.NativeMinCharsPerPage && !opts.ForceOCR {
			d.IsNativePDF = true
			d.Provider = models.ProviderNative
			d.Confidence = 1
			d.Reason = fmt.Sprintf("text layer present (%d chars/page)", density)
			return d, nil
		}
		if density >= r.cfg.NativeMinCharsPerPage {
			reason = "OCR forced by caller"
		} else {
			reason = fmt.Sprintf("sparse text layer (%d chars/page)", density)
		}
	case kindImage:
		d.PageCount = 1
		reason = "image input"
	default:
		d.Provider = models.ProviderNative
		d.PageCount = 1
		d.Confidence = 1
		d.Reason = "text-based format"
		return d, nil
	}

	if p := opts.PreferredProvider; p != "" && p != models.ProviderNative {
		d.Provider = p
		d.Confidence = 1
		d.Reason = reason + "; caller preferred " + string(p)
		return d, nil
	}

	label, err := r.classify(ctx, src.Data, kind, mimeType)
	if err != nil {
		r.log.Warn("page classification failed, assuming clean scan", "name", src.Name, "error", err)
		d.VisionLabel = models.LabelClean
		d.Confidence = 0.5
		reason += "; classifier unavailable"
	} else {
		d.VisionLabel = label
		d.Confidence = 0.8
		reason += "; page classified " + string(label)
	}
	d.Provider = ProviderForLabel(d.VisionLabel)
	d.Reason = reason
	return d, nil
}

func (r *Router) classify(ctx context.Context, data []byte, kind docKind, mimeType string) (models.VisionLabel, error) {
	if r.classifier == nil {
		return "", fmt.Errorf("no classifier configured")
	}
	image, imageType := data, mimeType
	if kind == kindPDF {
		if r.renderer == nil {
			return "", fmt.Errorf("no page renderer configured")
		}
		imgs, err := r.renderer.RenderPages(ctx, data, 1, 1)
		if err != nil {
			return "", fmt.Errorf("render sample page: %w", err)
		}
		if len(imgs) == 0 {
			return "", fmt.Errorf("render sample page: no output")
		}
		image, imageType = imgs[0], "image/png"
	}
	return r.classifier.ClassifyPage(ctx, image, imageType)
}

// ProviderForLabel maps a page classification to the OCR provider that handles it best.
func ProviderForLabel(label models.VisionLabel) models.Provider {
	switch label {
	case models.LabelHandwritten, models.LabelComplex:
		return models.ProviderGemini
	default:
		return models.ProviderAzure
	}
}
