package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	middleware "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/api/middlewares"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/retrieval"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Searcher runs hybrid queries.
type Searcher interface {
	Search(ctx context.Context, req retrieval.SearchRequest) ([]models.SearchResult, error)
}

type SearchHandler struct {
	engine Searcher
	log    *slog.Logger
}

func NewSearchHandler(engine Searcher, log *slog.Logger) *SearchHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SearchHandler{engine: engine, log: log}
}

// searchRequest is the wire form of a query. Weights are [bm25, vector].
type searchRequest struct {
	Query         string        `json:"query"`
	Scope         string        `json:"scope"`
	ScopeID       string        `json:"scopeId,omitempty"`
	ScopeIDs      []string      `json:"scopeIds,omitempty"`
	CompanyID     string        `json:"companyId,omitempty"`
	TopK          int           `json:"topK,omitempty"`
	Weights       *[2]float64   `json:"weights,omitempty"`
	MinSimilarity *float64      `json:"minSimilarity,omitempty"`
	Filters       *searchFilter `json:"filters,omitempty"`
}

type searchFilter struct {
	DocumentClass string     `json:"documentClass,omitempty"`
	DateRange     *dateRange `json:"dateRange,omitempty"`
	TopicTags     []string   `json:"topicTags,omitempty"`
}

type dateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		jsonError(w, err)
		return
	}

	// With a token the query is pinned to the caller's company whatever the scope.
	if tenant, ok := middleware.CompanyFromContext(r.Context()); ok {
		if req.Scope.CompanyID != "" && req.Scope.CompanyID != tenant {
			jsonError(w, errForbidden)
			return
		}
		req.Scope.CompanyID = tenant
	}

	results, err := h.engine.Search(r.Context(), req)
	if err != nil {
		h.log.Error("search failed", "error", err, "scope", req.Scope.Scope)
		jsonError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (b searchRequest) toRequest() (retrieval.SearchRequest, error) {
	req := retrieval.SearchRequest{
		Query:         b.Query,
		TopK:          b.TopK,
		MinSimilarity: b.MinSimilarity,
	}
	switch b.Scope {
	case "document":
		req.Scope = models.ScopeSpec{Scope: models.ScopeDocument, DocumentID: b.ScopeID, CompanyID: b.CompanyID}
	case "company":
		req.Scope = models.ScopeSpec{Scope: models.ScopeCompany, CompanyID: b.ScopeID}
		if b.ScopeID == "" {
			req.Scope.CompanyID = b.CompanyID
		}
	case "multiDocument", "multi_document":
		req.Scope = models.ScopeSpec{Scope: models.ScopeMultiDocument, DocumentIDs: b.ScopeIDs, CompanyID: b.CompanyID}
	default:
		return req, core.InvalidInput("scope must be document, company or multiDocument, got %q", b.Scope)
	}
	if b.Weights != nil {
		req.Weights = &retrieval.Weights{BM25: b.Weights[0], Vector: b.Weights[1]}
	}
	if f := b.Filters; f != nil {
		req.Filters = models.SearchFilters{DocumentClass: f.DocumentClass, TopicTags: f.TopicTags}
		if f.DateRange != nil {
			req.Filters.DateFrom, req.Filters.DateTo = f.DateRange.From, f.DateRange.To
		}
	}
	return req, nil
}
