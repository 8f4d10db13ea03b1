package retrieval

import (
	"math"
	"sort"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// fused is a chunk after reciprocal rank fusion.
type fused struct {
	hit
	score     float64
	inVector  bool
	inKeyword bool
}

// fuse combines the two ranked lists with weighted reciprocal rank fusion:
// each list contributes w / (rank + k) with 1-based ranks. Results whose
// similarity (1 - distance) is below minSimilarity are dropped; keyword-only
// results carry no distance and are kept.
func fuse(vector, keyword []hit, w Weights, k, minSimilarity float64, topK int) []fused {
	byID := map[string]*fused{}
	var order []*fused
	get := func(h hit) *fused {
		f, ok := byID[h.cand.ChunkID]
		if !ok {
			f = &fused{hit: h}
			byID[h.cand.ChunkID] = f
			order = append(order, f)
		}
		return f
	}
	for i, h := range vector {
		f := get(h)
		f.score += w.Vector / (float64(i+1) + k)
		f.inVector = true
		f.distance = h.distance
	}
	for i, h := range keyword {
		f := get(h)
		f.score += w.BM25 / (float64(i+1) + k)
		f.inKeyword = true
	}

	out := make([]fused, 0, len(order))
	for _, f := range order {
		if f.distance != nil && 1-*f.distance < minSimilarity {
			continue
		}
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		di, dj := distanceOrInf(out[i].distance), distanceOrInf(out[j].distance)
		if di != dj {
			return di < dj
		}
		return out[i].cand.ChunkID < out[j].cand.ChunkID
	})
	return out[:min(len(out), topK)]
}

func distanceOrInf(d *float64) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return *d
}

func (f fused) method(vectorMethod models.RetrievalMethod) models.RetrievalMethod {
	switch {
	case f.inVector && f.inKeyword:
		return models.MethodHybrid
	case f.inVector:
		return vectorMethod
	default:
		return models.MethodBM25
	}
}

func (f fused) result(vectorMethod models.RetrievalMethod) models.SearchResult {
	return models.SearchResult{
		Content:         f.cand.ParentContent,
		ChunkID:         f.cand.ChunkID,
		ChildContent:    f.cand.ChildContent,
		Page:            f.cand.PageNumber,
		DocumentID:      f.cand.DocumentID,
		DocumentTitle:   f.cand.DocumentTitle,
		Distance:        f.distance,
		Score:           f.score,
		RetrievalMethod: f.method(vectorMethod),
	}
}
