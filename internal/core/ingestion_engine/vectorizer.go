package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// Vectorizer embeds every child chunk and derives the short prefilter vector.
type Vectorizer struct {
	embedder core.EmbeddingProvider
	cfg      VectorizerConfig
	strategy Strategy
	limiter  *rate.Limiter
	log      *slog.Logger
}

func NewVectorizer(embedder core.EmbeddingProvider, cfg VectorizerConfig, strategy Strategy, log *slog.Logger) *Vectorizer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Vectorizer{embedder: embedder, cfg: cfg, strategy: strategy, limiter: limiter, log: log}
}

// Vectorize returns chunks with embeddings attached, preserving order.
// No embedding request is made when there are no children.
func (v *Vectorizer) Vectorize(ctx context.Context, chunks []models.DocumentChunk) ([]models.VectorizedChunk, error) {
	var texts []string
	for _, ch := range chunks {
		for _, child := range ch.Children {
			texts = append(texts, child.Content)
		}
	}
	if len(texts) == 0 {
		out := make([]models.VectorizedChunk, 0, len(chunks))
		for _, ch := range chunks {
			out = append(out, models.VectorizedChunk{DocumentChunk: ch})
		}
		return out, nil
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.MaxConcurrency)

	for start := 0; start < len(texts); start += v.cfg.BatchSize {
		end := min(start+v.cfg.BatchSize, len(texts))
		g.Go(func() error {
			if err := v.limiter.Wait(gctx); err != nil {
				return core.Wrap(core.ErrEmbedding, "rate limit wait", err)
			}
			batch, err := v.embedder.EmbedTexts(gctx, texts[start:end])
			if err != nil {
				return core.Wrap(core.ErrEmbedding, fmt.Sprintf("embed batch [%d:%d]", start, end), err)
			}
			if len(batch) != end-start {
				return core.Errorf(core.ErrEmbedding, "embed batch", "provider returned %d vectors for %d texts", len(batch), end-start)
			}
			for i, vec := range batch {
				if len(vec) < v.cfg.FullDim {
					return core.Errorf(core.ErrEmbedding, "embed batch", "vector has %d dims, need %d", len(vec), v.cfg.FullDim)
				}
				vectors[start+i] = vec[:v.cfg.FullDim:v.cfg.FullDim]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	v.log.Debug("embedded chunks", "texts", len(texts), "batches", (len(texts)+v.cfg.BatchSize-1)/v.cfg.BatchSize)

	out := make([]models.VectorizedChunk, 0, len(chunks))
	next := 0
	for _, ch := range chunks {
		vc := models.VectorizedChunk{DocumentChunk: ch, Children: make([]models.VectorizedChild, 0, len(ch.Children))}
		for _, child := range ch.Children {
			full := vectors[next]
			next++
			vc.Children = append(vc.Children, models.VectorizedChild{
				ChildChunk:     child,
				Embedding:      full,
				EmbeddingShort: Truncate(full, v.cfg.ShortDim),
			})
		}
		if v.strategy == StrategyParentOnly && len(vc.Children) > 0 {
			vc.Embedding = vc.Children[0].Embedding
		}
		out = append(out, vc)
	}
	return out, nil
}

// Truncate copies the leading dim values of vec.
func Truncate(vec []float32, dim int) []float32 {
	if dim > len(vec) {
		dim = len(vec)
	}
	out := make([]float32, dim)
	copy(out, vec[:dim])
	return out
}
