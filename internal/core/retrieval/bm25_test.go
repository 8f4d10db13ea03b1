package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBM25_Score(t *testing.T) {
	docs := []string{
		"Lease renewal terms for the lease of unit 4.",
		"The lease starts in March.",
		"Parking allocation and visitor policy.",
	}
	scores := DefaultBM25().Score([]string{"lease", "renewal"}, docs)

	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[1], 0.0)
	assert.Equal(t, 0.0, scores[2])
}

func TestBM25_Empty(t *testing.T) {
	assert.Equal(t, []float64{0}, DefaultBM25().Score(nil, []string{"x"}))
	assert.Empty(t, DefaultBM25().Score([]string{"x"}, nil))
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, CosineDistance([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 1, CosineDistance([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, 2, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}))
}
