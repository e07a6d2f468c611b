// Package httptransport assembles the service router: middleware chain,
// evidence endpoints, health, and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	evhandler "dossier/internal/evidence/handler"
	"dossier/internal/platform/middleware"
	"dossier/pkg/platform/httputil"
)

// HealthChecker reports backend liveness for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Evidence   *evhandler.Handler
	SigningKey []byte
	Logger     *slog.Logger
	// Checks maps a backend name to its health probe; failures degrade
	// /healthz to 503 with per-backend detail.
	Checks map[string]HealthChecker
}

// NewRouter builds the full middleware chain and mounts all endpoints.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Authenticate(deps.SigningKey, deps.Logger))

	deps.Evidence.Register(r)

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		detail := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				detail[name] = err.Error()
				continue
			}
			detail[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":   healthLabel(status),
			"backends": detail,
		})
	}
}

func healthLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
