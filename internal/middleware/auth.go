package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	TenantKey contextKey = "tenant"
	APIKeyKey contextKey = "api_key"
)

// publicPaths are reachable without an API key (probes and metrics scrapers).
var publicPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// APIKeyAuth validates API key from Authorization header.
// With no keys configured every request passes as tenant "anonymous".
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if len(validKeys) == 0 {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), TenantKey, "anonymous")))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			// constant-time comparison
			var tenant string
			for t, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					tenant = t
					break
				}
			}
			if tenant == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), TenantKey, tenant)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext extracts tenant from context
func GetTenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(TenantKey).(string); ok {
		return tenant
	}
	return ""
}
