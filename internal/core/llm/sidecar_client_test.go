package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func newSidecar(t *testing.T) *SidecarClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /embed", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := embedResponse{Dimension: 3, Count: len(req.Texts)}
		for i := range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 0.5, 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /rerank", func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		scores := make([]float64, len(req.Documents))
		for i, d := range req.Documents {
			if d == req.Query {
				scores[i] = 1
			}
		}
		_ = json.NewEncoder(w).Encode(rerankResponse{Scores: scores, Count: len(scores)})
	})
	mux.HandleFunc("POST /extract-entities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"text":"Acme hired Bob","entities":[{"text":"Acme","label":"ORG","score":0.9},{"text":"Bob","label":"PERSON","score":0.8}]},
			{"text":"nothing here","entities":[]}
		],"total_entities":2}`))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewSidecarClient(srv.URL+"/", 0, srv.Client())
}

func TestSidecarClient_Embed(t *testing.T) {
	c := newSidecar(t)
	vecs, err := c.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0.5, 1}, {1, 0.5, 1}}, vecs)

	vecs, err = c.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestSidecarClient_EmbedPadsToSchemaDimension(t *testing.T) {
	c := newSidecar(t).WithDimension(5)

	vecs, err := c.EmbedTexts(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0.5, 1, 0, 0}}, vecs)

	q, err := c.EmbedQuery(context.Background(), "what is a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, 1, 0, 0}, q)

	vecs, err = newSidecar(t).WithDimension(2).EmbedTexts(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vecs[0], 3)
}

func TestSidecarClient_Rerank(t *testing.T) {
	scores, err := newSidecar(t).Rerank(context.Background(), "q", []string{"x", "q"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, scores)
}

func TestSidecarClient_ExtractEntities(t *testing.T) {
	out, err := newSidecar(t).ExtractEntities(context.Background(), []string{"Acme hired Bob", "nothing here"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []models.Entity{{Text: "Acme", Label: "ORG", Score: 0.9}, {Text: "Bob", Label: "PERSON", Score: 0.8}}, out[0])
	assert.Empty(t, out[1])
}

func TestSidecarClient_Health(t *testing.T) {
	assert.NoError(t, newSidecar(t).Health(context.Background()))
}

func TestSidecarClient_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewSidecarClient(srv.URL, 10, srv.Client()).EmbedTexts(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
	assert.Error(t, NewSidecarClient(srv.URL, 0, srv.Client()).Health(context.Background()))
}
