package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "dossier/pkg/domain"
	"dossier/pkg/requestcontext"
)

const bearerPrefix = "Bearer "

// Claims is the token payload the gateway issues for marketplace callers.
type Claims struct {
	Role string `json:"role"`
	Typ  string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate validates a Bearer token when one is present and stores the
// resulting requester in the context. A request without a token passes
// through anonymous: the access gate decides what anonymity means per
// endpoint. A present-but-invalid token is rejected here.
func Authenticate(signingKey []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return signingKey, nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				logger.WarnContext(r.Context(), "rejected invalid bearer token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
				return
			}

			requesterType := id.RequesterTypeUser
			if claims.Typ == string(id.RequesterTypeService) {
				requesterType = id.RequesterTypeService
			}
			requester := id.Requester{
				Type: requesterType,
				ID:   id.UserID(claims.Subject),
				Role: id.ParseRole(claims.Role),
			}
			ctx := requestcontext.WithRequester(r.Context(), requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
