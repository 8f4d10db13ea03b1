package retrieval

import (
	"math"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/lexicon"
)

// BM25 holds the Okapi BM25 parameters.
type BM25 struct {
	K1 float64
	B  float64
}

func DefaultBM25() BM25 {
	return BM25{K1: 1.2, B: 0.75}
}

// Score rates each document against the query terms. Corpus statistics come
// from docs alone, so scores are only comparable within one call.
func (p BM25) Score(queryTerms []string, docs []string) []float64 {
	scores := make([]float64, len(docs))
	if len(queryTerms) == 0 || len(docs) == 0 {
		return scores
	}

	tfs := make([]map[string]int, len(docs))
	lengths := make([]int, len(docs))
	df := make(map[string]int, len(queryTerms))
	total := 0
	for i, d := range docs {
		terms := lexicon.Terms(d)
		lengths[i] = len(terms)
		total += len(terms)
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		tfs[i] = tf
		for _, q := range queryTerms {
			if tf[q] > 0 {
				df[q]++
			}
		}
	}
	avgdl := float64(total) / float64(len(docs))
	if avgdl == 0 {
		return scores
	}

	n := float64(len(docs))
	for i := range docs {
		norm := p.K1 * (1 - p.B + p.B*float64(lengths[i])/avgdl)
		for _, q := range queryTerms {
			f := float64(tfs[i][q])
			if f == 0 {
				continue
			}
			idf := math.Log(1 + (n-float64(df[q])+0.5)/(float64(df[q])+0.5))
			scores[i] += idf * f * (p.K1 + 1) / (f + norm)
		}
	}
	return scores
}
