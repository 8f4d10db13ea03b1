package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Engine answers hybrid queries over the chunk index. It holds no mutable
// state, so one Engine serves any number of concurrent searches.
type Engine struct {
	store    core.SearchStore
	embedder core.EmbeddingProvider
	reranker core.Reranker
	opts     Options
	log      *slog.Logger
}

// NewEngine builds an engine. reranker may be nil.
func NewEngine(store core.SearchStore, embedder core.EmbeddingProvider, reranker core.Reranker, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, embedder: embedder, reranker: reranker, opts: opts.withDefaults(), log: log}
}

// Search validates the request, runs the vector and keyword retrievers
// concurrently and fuses their rankings.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]models.SearchResult, error) {
	q, err := e.opts.validate(req)
	if err != nil {
		return nil, err
	}
	log := e.log.With("scope", q.scope.Scope, "top_k", q.topK)

	queryVec, err := e.embedder.EmbedQuery(ctx, q.text)
	if err != nil {
		return nil, core.Wrap(core.ErrEmbedding, "embed query", err)
	}
	if len(queryVec) == 0 {
		return nil, core.Errorf(core.ErrEmbedding, "embed query", "empty query vector")
	}

	var (
		vectorHits   []hit
		keywordHits  []hit
		vectorMethod models.RetrievalMethod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vectorHits, vectorMethod, err = e.vectorSearch(gctx, q, queryVec)
		return err
	})
	g.Go(func() error {
		var err error
		keywordHits, err = e.keywordSearch(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := fuse(vectorHits, keywordHits, q.weights, e.opts.RRFK, q.minSimilarity, q.topK)
	if e.opts.Rerank && e.reranker != nil && len(ranked) > 1 {
		ranked = e.rerank(ctx, q.text, ranked, log)
	}

	out := make([]models.SearchResult, len(ranked))
	for i, f := range ranked {
		out[i] = f.result(vectorMethod)
	}
	log.Debug("search done",
		"vector_hits", len(vectorHits),
		"keyword_hits", len(keywordHits),
		"results", len(out),
		"vector_method", vectorMethod,
	)
	return out, nil
}

// rerank reorders the fused list by reranker score. On failure the fused order stands.
func (e *Engine) rerank(ctx context.Context, text string, ranked []fused, log *slog.Logger) []fused {
	docs := make([]string, len(ranked))
	for i, f := range ranked {
		docs[i] = f.cand.ChildContent
	}
	scores, err := e.reranker.Rerank(ctx, text, docs)
	if err != nil || len(scores) != len(ranked) {
		log.Warn("rerank failed, keeping fused order", "error", err, "scores", len(scores))
		return ranked
	}
	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	out := make([]fused, len(ranked))
	for i, j := range idx {
		out[i] = ranked[j]
	}
	return out
}

// inTenant drops candidates from other companies when the scope names one.
func (e *Engine) inTenant(scope models.ScopeSpec, cands []models.Candidate) []models.Candidate {
	if scope.CompanyID == "" {
		return cands
	}
	out := cands[:0:0]
	for _, c := range cands {
		if c.CompanyID == scope.CompanyID {
			out = append(out, c)
		} else {
			e.log.Warn("dropping out-of-tenant candidate", "chunk_id", c.ChunkID, "company_id", c.CompanyID)
		}
	}
	return out
}
