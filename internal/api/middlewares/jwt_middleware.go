package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const companyKey ctxKey = "company_id"

// CompanyFromContext returns the tenant attached by JWTMiddleware.
func CompanyFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(companyKey).(string)
	return id, ok && id != ""
}

// WithCompany attaches a tenant to ctx.
func WithCompany(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyKey, companyID)
}

// JWTMiddleware validates the bearer token and attaches its company_id claim to the request
// context. Handlers compare it against the company a request targets.
func JWTMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			companyID, ok := claims["company_id"].(string)
			if !ok || companyID == "" {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCompany(r.Context(), companyID)))
		})
	}
}
