package ocr

import (
	"sort"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Registry maps each provider to the adapter that normalizes for it.
type Registry map[models.Provider]core.Normalizer

// Register adds n under p. A nil adapter is ignored so optional providers can be
// registered unconditionally.
func (r Registry) Register(p models.Provider, n core.Normalizer) Registry {
	if n != nil {
		r[p] = n
	}
	return r
}

// Providers lists the registered providers in name order.
func (r Registry) Providers() []models.Provider {
	out := make([]models.Provider, 0, len(r))
	for p := range r {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
