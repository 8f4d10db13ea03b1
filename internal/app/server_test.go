package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/retrieval"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/services"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubIngest struct{}

func (stubIngest) Submit(context.Context, services.IngestRequest, bool) (*services.Submission, error) {
	return &services.Submission{JobID: "j", DocumentID: "d", Status: models.JobQueued}, nil
}

func (stubIngest) Status(_ context.Context, id string) (*models.IngestJob, error) {
	return nil, core.ErrNotFound
}

type stubSearch struct{}

func (stubSearch) Search(context.Context, retrieval.SearchRequest) ([]models.SearchResult, error) {
	return nil, nil
}

func testServer(secret string, ping error) http.Handler {
	cfg := &config.Config{Port: "0", JWTSecret: secret, CORSOrigins: []string{"http://localhost:3000"}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, stubIngest{}, nil, stubSearch{}, stubPinger{err: ping}, log).Handler()
}

func TestServer_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer("", nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	testServer("", errors.New("down")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Routes(t *testing.T) {
	h := testServer("", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"q","scope":"company","scopeId":"acme"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ingest/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Upload is not mounted without object storage.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RequiresTokenWhenSecretSet(t *testing.T) {
	h := testServer("s3cret", nil)
	body := `{"documentUrl":"s3://b/k","documentName":"k","companyId":"acme","userId":"u"}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"company_id": "acme",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
