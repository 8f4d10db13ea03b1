package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTMiddleware(t *testing.T) {
	var seen string
	h := JWTMiddleware("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CompanyFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		tenant string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + sign(t, "other", jwt.MapClaims{"company_id": "acme"}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, "s3cret", jwt.MapClaims{"company_id": "acme", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"no company", "Bearer " + sign(t, "s3cret", jwt.MapClaims{"user_id": "u-1"}), http.StatusUnauthorized, ""},
		{"ok", "Bearer " + sign(t, "s3cret", jwt.MapClaims{"company_id": "acme"}), http.StatusNoContent, "acme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/ingest/j1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.tenant, seen)
		})
	}
}
