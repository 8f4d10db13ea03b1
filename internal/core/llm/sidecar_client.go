package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// SidecarClient talks to the local inference sidecar that serves embeddings,
// cross-encoder reranking and named-entity extraction.
type SidecarClient struct {
	BaseURL string
	client  *http.Client
	limiter *rate.Limiter
	dim     int
}

var (
	_ core.EmbeddingProvider = (*SidecarClient)(nil)
	_ core.Reranker          = (*SidecarClient)(nil)
	_ core.EntityExtractor   = (*SidecarClient)(nil)
)

// NewSidecarClient builds a client. rps <= 0 disables client-side rate limiting.
func NewSidecarClient(baseURL string, rps float64, client *http.Client) *SidecarClient {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &SidecarClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimension  int         `json:"dimension"`
	Count      int         `json:"count"`
}

// WithDimension zero-pads every returned embedding up to dim values.
// Trailing zeros change neither dot products nor norms, so cosine distances are preserved.
func (c *SidecarClient) WithDimension(dim int) *SidecarClient {
	c.dim = dim
	return c
}

func (c *SidecarClient) pad(vec []float32) []float32 {
	if len(vec) >= c.dim {
		return vec
	}
	out := make([]float32, c.dim)
	copy(out, vec)
	return out
}

func (c *SidecarClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp embedResponse
	if err := c.post(ctx, "/embed", embedRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("sidecar embed: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	for i, vec := range resp.Embeddings {
		resp.Embeddings[i] = c.pad(vec)
	}
	return resp.Embeddings, nil
}

// EmbedQuery embeds a search query. The sidecar model is symmetric, so this is a one-text batch.
func (c *SidecarClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
	Count  int       `json:"count"`
}

func (c *SidecarClient) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	var resp rerankResponse
	if err := c.post(ctx, "/rerank", rerankRequest{Query: query, Documents: documents}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Scores) != len(documents) {
		return nil, fmt.Errorf("sidecar rerank: expected %d scores, got %d", len(documents), len(resp.Scores))
	}
	return resp.Scores, nil
}

type entitiesRequest struct {
	Chunks []string `json:"chunks"`
}

type entitiesResponse struct {
	Results []struct {
		Text     string          `json:"text"`
		Entities []models.Entity `json:"entities"`
	} `json:"results"`
	TotalEntities int `json:"total_entities"`
}

func (c *SidecarClient) ExtractEntities(ctx context.Context, chunks []string) ([][]models.Entity, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	var resp entitiesResponse
	if err := c.post(ctx, "/extract-entities", entitiesRequest{Chunks: chunks}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) != len(chunks) {
		return nil, fmt.Errorf("sidecar entities: expected %d results, got %d", len(chunks), len(resp.Results))
	}
	out := make([][]models.Entity, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Entities
	}
	return out, nil
}

// Health returns nil when the sidecar answers its health probe.
func (c *SidecarClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar health: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sidecar health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *SidecarClient) post(ctx context.Context, path string, payload, into any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sidecar %s: marshal request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sidecar %s: create request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sidecar %s: bad status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("sidecar %s: decode response: %w", path, err)
	}
	return nil
}
