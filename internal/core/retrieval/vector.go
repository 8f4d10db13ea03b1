package retrieval

import (
	"context"
	"math"
	"sort"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// hit is one entry of a retriever's ranked list.
type hit struct {
	cand     models.Candidate
	distance *float64
}

// vectorSearch runs the two-stage search: stage 1 asks the store for
// topK*CandidateMultiplier neighbours by short-vector distance, stage 2 reorders
// exactly those candidates by full-vector cosine distance and keeps topK.
// Scopes without child rows fall back to the flat legacy chunks.
func (e *Engine) vectorSearch(ctx context.Context, q query, queryVec []float32) ([]hit, models.RetrievalMethod, error) {
	full := prefix(queryVec, e.opts.FullDim)

	hasChildren, err := e.store.HasChildIndex(ctx, q.scope)
	if err != nil {
		return nil, "", core.Wrap(core.ErrStorage, "check child index", err)
	}
	if !hasChildren {
		cands, err := e.store.LegacyVectorSearch(ctx, q.scope, q.filters, full, q.topK)
		if err != nil {
			return nil, "", core.Wrap(core.ErrStorage, "legacy vector search", err)
		}
		cands = e.inTenant(q.scope, cands)
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].Distance < cands[j].Distance })
		hits := make([]hit, 0, min(len(cands), q.topK))
		for _, c := range cands[:min(len(cands), q.topK)] {
			d := c.Distance
			hits = append(hits, hit{cand: c, distance: &d})
		}
		return hits, models.MethodVectorLegacy, nil
	}

	short := prefix(full, e.opts.ShortDim)
	cands, err := e.store.VectorCandidates(ctx, q.scope, q.filters, short, q.topK*e.opts.CandidateMultiplier)
	if err != nil {
		return nil, "", core.Wrap(core.ErrStorage, "vector candidates", err)
	}
	cands = e.inTenant(q.scope, cands)

	hits := make([]hit, len(cands))
	for i, c := range cands {
		d := c.Distance
		if len(c.Embedding) > 0 {
			d = CosineDistance(full, c.Embedding)
		}
		hits[i] = hit{cand: c, distance: &d}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if *hits[i].distance != *hits[j].distance {
			return *hits[i].distance < *hits[j].distance
		}
		return hits[i].cand.ChunkID < hits[j].cand.ChunkID
	})
	return hits[:min(len(hits), q.topK)], models.MethodVector, nil
}

// CosineDistance is 1 - cos(a, b) over the common prefix of a and b.
// A zero vector is at distance 1 from everything.
func CosineDistance(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func prefix(v []float32, n int) []float32 {
	if n <= 0 || len(v) <= n {
		return v
	}
	return v[:n]
}
