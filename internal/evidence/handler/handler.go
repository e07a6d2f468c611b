// Package handler exposes the evidence endpoints over HTTP. It owns request
// parsing, the access gate check, and status mapping; pack semantics live in
// the service package.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dossier/internal/evidence/access"
	"dossier/internal/evidence/metrics"
	"dossier/internal/evidence/models"
	"dossier/internal/evidence/receipt"
	"dossier/internal/evidence/service"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/audit"
	"dossier/pkg/platform/httputil"
	"dossier/pkg/requestcontext"
	"dossier/pkg/secrets"
)

// Service is the evidence build port the handler drives.
type Service interface {
	Build(ctx context.Context, listingID id.ListingID, requester id.Requester, opts models.BuildOptions) (*models.EvidencePack, error)
}

// Handler wires evidence endpoints to the evidence service and access gate.
type Handler struct {
	service      Service
	gate         *access.Gate
	receipts     receipt.Store
	auditor      audit.Recorder
	operatorHash string
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// New constructs the evidence handler. operatorHash is the bcrypt hash
// guarding the verify endpoint; empty disables it.
func New(svc Service, gate *access.Gate, auditor audit.Recorder, operatorHash string, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		service:      svc,
		gate:         gate,
		auditor:      auditor,
		operatorHash: operatorHash,
		logger:       logger,
		metrics:      m,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Option configures optional handler collaborators.
type Option func(*Handler)

// WithReceipts lets the verify endpoint report whether a pack is the latest
// issued for its listing.
func WithReceipts(store receipt.Store) Option {
	return func(h *Handler) { h.receipts = store }
}

// Register mounts evidence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/evidence/{listingID}", h.HandleGet)
	r.Get("/evidence/{listingID}/access", h.HandleAccess)
	r.Post("/evidence/verify", h.HandleVerify)
}

// HandleGet handles GET /evidence/{listingID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	listingID := id.ListingID(chi.URLParam(r, "listingID"))
	if listingID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "listing id is required"))
		return
	}

	format, ok := models.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "format must be json, pdf, or zip"))
		return
	}
	opts := models.BuildOptions{
		IncludeViewings: r.URL.Query().Get("include_viewings") == "true",
		Format:          format,
	}

	requester := requestcontext.Requester(ctx)
	decision, err := h.gate.CanAccess(ctx, requester, listingID)
	if err != nil {
		h.logger.ErrorContext(ctx, "access check failed",
			"request_id", requestID,
			"listing_id", listingID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.metrics.IncrementAccess(decision.Allowed)
	if !decision.Allowed {
		h.deny(ctx, requester, listingID, decision)
		httputil.WriteError(w, denialError(decision))
		return
	}

	pack, err := h.service.Build(ctx, listingID, requester, opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "evidence build failed",
			"request_id", requestID,
			"listing_id", listingID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evidence pack generated",
		"request_id", requestID,
		"listing_id", listingID,
		"format", opts.Format,
		"timeline_entries", len(pack.Timeline),
		"pack_hash", pack.Integrity.PackHash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, pack)
}

// HandleAccess handles GET /evidence/{listingID}/access requests: the gate
// decision alone, without building anything.
func (h *Handler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID := id.ListingID(chi.URLParam(r, "listingID"))
	if listingID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "listing id is required"))
		return
	}

	requester := requestcontext.Requester(ctx)
	decision, err := h.gate.CanAccess(ctx, requester, listingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.metrics.IncrementAccess(decision.Allowed)

	httputil.WriteJSON(w, http.StatusOK, AccessResponse{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
	})
}

// HandleVerify handles POST /evidence/verify requests. The endpoint is for
// operators holding the shared verification token, not marketplace users.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if h.operatorHash == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "verification endpoint is disabled"))
		return
	}
	token := r.Header.Get("X-Operator-Token")
	if err := secrets.Verify(token, h.operatorHash); err != nil {
		h.logger.WarnContext(ctx, "rejected verify request",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid operator token"))
		return
	}

	req, ok := httputil.Decode[VerifyRequest](w, r)
	if !ok {
		return
	}
	if req.Pack == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "pack is required"))
		return
	}

	result, err := service.Verify(req.Pack)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := VerifyResponse{Result: result}
	if h.receipts != nil {
		listingID := id.ListingID(req.Pack.Subject.Listing.ID)
		latest, err := h.receipts.Latest(ctx, listingID)
		if err != nil {
			h.logger.WarnContext(ctx, "receipt lookup failed",
				"request_id", requestID,
				"listing_id", listingID,
				"error", err,
			)
		} else if latest != nil {
			resp.IsLatest = new(bool)
			*resp.IsLatest = latest.PackHash == req.Pack.Integrity.PackHash
		}
	}

	if err := h.auditor.Record(ctx, audit.Event{
		ActorType: "operator",
		Action:    audit.ActionEvidenceVerified,
		Entity:    "listing",
		EntityID:  req.Pack.Subject.Listing.ID,
		Payload: map[string]any{
			"valid":     result.Valid,
			"pack_hash": req.Pack.Integrity.PackHash,
		},
	}); err != nil {
		h.metrics.IncrementAuditFailure()
		h.logger.ErrorContext(ctx, "audit record failed for verification",
			"request_id", requestID,
			"error", err,
		)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// deny records a rejected access attempt. Best-effort, like every audit
// write on this path.
func (h *Handler) deny(ctx context.Context, requester id.Requester, listingID id.ListingID, decision access.Decision) {
	if err := h.auditor.Record(ctx, audit.Event{
		ActorType: string(requester.Type),
		ActorID:   requester.ID.String(),
		Action:    audit.ActionAccessDenied,
		Entity:    "listing",
		EntityID:  listingID.String(),
		Payload:   map[string]any{"reason": decision.Reason},
	}); err != nil {
		h.metrics.IncrementAuditFailure()
	}
}

func denialError(decision access.Decision) error {
	switch decision.Reason {
	case access.ReasonAuthRequired:
		return dErrors.New(dErrors.CodeUnauthorized, decision.Reason)
	case access.ReasonListingMissing:
		return dErrors.New(dErrors.CodeNotFound, decision.Reason)
	default:
		return dErrors.New(dErrors.CodeForbidden, decision.Reason)
	}
}
