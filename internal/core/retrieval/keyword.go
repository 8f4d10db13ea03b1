package retrieval

import (
	"context"
	"sort"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/lexicon"
)

// keywordSearch ranks scoped children containing any query term by BM25.
func (e *Engine) keywordSearch(ctx context.Context, q query) ([]hit, error) {
	terms := lexicon.UniqueTerms(q.text)
	if len(terms) == 0 {
		return nil, nil
	}
	cands, err := e.store.KeywordCandidates(ctx, q.scope, q.filters, terms, e.opts.KeywordLimit)
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "keyword candidates", err)
	}
	cands = e.inTenant(q.scope, cands)

	texts := make([]string, len(cands))
	for i, c := range cands {
		texts[i] = c.ChildContent
	}
	scores := e.opts.BM25.Score(terms, texts)

	type scored struct {
		hit
		score float64
	}
	ranked := make([]scored, 0, len(cands))
	for i, c := range cands {
		if scores[i] > 0 {
			ranked = append(ranked, scored{hit: hit{cand: c}, score: scores[i]})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].cand.ChunkID < ranked[j].cand.ChunkID
	})

	out := make([]hit, 0, min(len(ranked), q.topK))
	for _, r := range ranked[:min(len(ranked), q.topK)] {
		out = append(out, r.hit)
	}
	return out, nil
}
