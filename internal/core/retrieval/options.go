package retrieval

import (
	"math"
	"strings"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Weights are the fusion weights of the keyword and vector rankings. They must sum to 1.
type Weights struct {
	BM25   float64 `json:"bm25"`
	Vector float64 `json:"vector"`
}

// DefaultWeights favour the vector ranking.
var DefaultWeights = Weights{BM25: 0.3, Vector: 0.7}

// Options configure an Engine.
type Options struct {
	FullDim             int
	ShortDim            int
	CandidateMultiplier int // stage-1 candidates per requested result
	KeywordLimit        int // keyword candidates scored per query
	DefaultTopK         int
	MaxTopK             int
	Weights             Weights
	RRFK                float64
	MinSimilarity       float64
	BM25                BM25
	Rerank              bool
}

func DefaultOptions() Options {
	return Options{
		FullDim:             1536,
		ShortDim:            512,
		CandidateMultiplier: 5,
		KeywordLimit:        200,
		DefaultTopK:         5,
		MaxTopK:             100,
		Weights:             DefaultWeights,
		RRFK:                60,
		BM25:                DefaultBM25(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FullDim <= 0 {
		o.FullDim = d.FullDim
	}
	if o.ShortDim <= 0 || o.ShortDim > o.FullDim {
		o.ShortDim = min(d.ShortDim, o.FullDim)
	}
	if o.CandidateMultiplier < 1 {
		o.CandidateMultiplier = d.CandidateMultiplier
	}
	if o.KeywordLimit <= 0 {
		o.KeywordLimit = d.KeywordLimit
	}
	if o.DefaultTopK <= 0 {
		o.DefaultTopK = d.DefaultTopK
	}
	if o.MaxTopK <= 0 {
		o.MaxTopK = d.MaxTopK
	}
	if o.Weights == (Weights{}) {
		o.Weights = d.Weights
	}
	if o.RRFK <= 0 {
		o.RRFK = d.RRFK
	}
	if o.BM25 == (BM25{}) {
		o.BM25 = d.BM25
	}
	return o
}

// SearchRequest is one hybrid query. Zero TopK, nil Weights and nil
// MinSimilarity take the engine defaults.
type SearchRequest struct {
	Query         string               `json:"query"`
	Scope         models.ScopeSpec     `json:"scope"`
	Filters       models.SearchFilters `json:"filters"`
	TopK          int                  `json:"topK,omitempty"`
	Weights       *Weights             `json:"weights,omitempty"`
	MinSimilarity *float64             `json:"minSimilarity,omitempty"`
}

// query is a validated request with defaults applied.
type query struct {
	text          string
	scope         models.ScopeSpec
	filters       models.SearchFilters
	topK          int
	weights       Weights
	minSimilarity float64
}

func (o Options) validate(req SearchRequest) (query, error) {
	q := query{
		text:          strings.TrimSpace(req.Query),
		scope:         req.Scope,
		filters:       req.Filters,
		topK:          req.TopK,
		weights:       o.Weights,
		minSimilarity: o.MinSimilarity,
	}
	if q.text == "" {
		return q, core.InvalidInput("query is empty")
	}

	switch req.Scope.Scope {
	case models.ScopeDocument:
		if req.Scope.DocumentID == "" {
			return q, core.InvalidInput("document scope requires a document id")
		}
	case models.ScopeCompany:
		if req.Scope.CompanyID == "" {
			return q, core.InvalidInput("company scope requires a company id")
		}
	case models.ScopeMultiDocument:
		ids := make([]string, 0, len(req.Scope.DocumentIDs))
		for _, id := range req.Scope.DocumentIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return q, core.InvalidInput("multi_document scope requires document ids")
		}
		q.scope.DocumentIDs = ids
	default:
		return q, core.InvalidInput("unknown scope %q", req.Scope.Scope)
	}

	if q.topK <= 0 {
		q.topK = o.DefaultTopK
	}
	q.topK = min(q.topK, o.MaxTopK)

	if req.Weights != nil {
		q.weights = *req.Weights
	}
	if err := q.weights.validate(); err != nil {
		return q, err
	}

	if req.MinSimilarity != nil {
		q.minSimilarity = *req.MinSimilarity
	}
	if q.minSimilarity < 0 || q.minSimilarity > 1 {
		return q, core.InvalidInput("minSimilarity must be within [0, 1], got %v", q.minSimilarity)
	}
	return q, nil
}

func (w Weights) validate() error {
	if w.BM25 < 0 || w.Vector < 0 {
		return core.InvalidInput("fusion weights must not be negative")
	}
	if math.Abs(w.BM25+w.Vector-1) > 1e-6 {
		return core.InvalidInput("fusion weights must sum to 1.0, got %.6f", w.BM25+w.Vector)
	}
	return nil
}
