package ingestion_engine

import (
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

// Strategy selects which chunk level is embedded and searched.
type Strategy string

const (
	StrategyHierarchical Strategy = "hierarchical"
	StrategyParentOnly   Strategy = "parent_only"
)

// ChunkerConfig tunes the hierarchical splitter. All budgets are in estimated tokens.
//
// ParentTokens:      upper bound for a narrative parent chunk (e.g., 1000).
// ChildTokens:       upper bound for a child chunk (e.g., 256).
// ChildOverlap:      tokens repeated from the end of one child at the head of the next (e.g., 50).
// IncludePageHeader: prefix each page's text with "[Page N]".
// Strategy:          hierarchical (children are searched) or parent_only.
type ChunkerConfig struct {
	ParentTokens      int
	ChildTokens       int
	ChildOverlap      int
	IncludePageHeader bool
	Strategy          Strategy
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ParentTokens: 1000,
		ChildTokens:  256,
		ChildOverlap: 50,
		Strategy:     StrategyHierarchical,
	}
}

func (c ChunkerConfig) validate() error {
	switch {
	case c.ParentTokens <= 0 || c.ChildTokens <= 0:
		return core.Errorf(core.ErrChunking, "config", "token budgets must be positive (parent=%d child=%d)", c.ParentTokens, c.ChildTokens)
	case c.ChildOverlap < 0 || c.ChildOverlap >= c.ChildTokens:
		return core.Errorf(core.ErrChunking, "config", "overlap %d must be in [0, %d)", c.ChildOverlap, c.ChildTokens)
	case c.ChildTokens > c.ParentTokens:
		return core.Errorf(core.ErrChunking, "config", "child budget %d exceeds parent budget %d", c.ChildTokens, c.ParentTokens)
	case c.Strategy != StrategyHierarchical && c.Strategy != StrategyParentOnly:
		return core.Errorf(core.ErrChunking, "config", "unknown strategy %q", c.Strategy)
	}
	return nil
}

// VectorizerConfig tunes embedding calls.
//
// BatchSize:         texts per embedding request (e.g., 20).
// MaxConcurrency:    batches in flight at once.
// RequestsPerSecond: provider rate limit; 0 disables limiting.
// FullDim / ShortDim: stored vector sizes; the short vector is the leading ShortDim values.
type VectorizerConfig struct {
	BatchSize         int
	MaxConcurrency    int
	RequestsPerSecond float64
	FullDim           int
	ShortDim          int
}

func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{BatchSize: 20, MaxConcurrency: 3, RequestsPerSecond: 5, FullDim: 1536, ShortDim: 512}
}

// EnrichmentConfig controls vision descriptions of complex PDFs.
type EnrichmentConfig struct {
	Enabled             bool
	MaxPages            int
	ConfidenceThreshold float64
}

func DefaultEnrichmentConfig() EnrichmentConfig {
	return EnrichmentConfig{Enabled: true, MaxPages: 5, ConfidenceThreshold: 0.7}
}

// IngestConfig groups the pipeline settings.
//
// QueueSize: capacity of the in-memory job queue; Enqueue blocks when it is full.
type IngestConfig struct {
	Chunker    ChunkerConfig
	Vectorizer VectorizerConfig
	Enrichment EnrichmentConfig
	QueueSize  int
}
