// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/api/shared"
)

// TraceID assigns a trace ID to every request so logs and error responses
// can be correlated.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
