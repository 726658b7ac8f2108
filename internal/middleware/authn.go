// Package middleware contains the HTTP middleware for the API server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
)

// Authn resolves the bearer token into a Principal and stores it in the
// request context. Requests without a resolvable principal continue
// unauthenticated; the access policy rejects them at the operation boundary
// so every route shares one failure path.
func Authn(decoder *iam.Decoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if principal, err := decoder.Decode(token); err == nil {
					r = r.WithContext(iam.WithPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
