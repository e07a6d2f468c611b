package middleware

import (
	"net/http"
	"time"

	"dossier/pkg/requestcontext"
)

// RequestTime freezes "now" once per request. Everything downstream reads
// the same instant: the pack's generated_at, the audit event timestamp, and
// the receipt all agree, and tests can substitute a fixture time.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
