// Package service assembles evidence packs. A build resolves the listing and
// its satellite records across both schema generations, redacts PII before
// anything enters the pack, reconciles the two audit logs into one hashed
// timeline, and seals the result with a whole-pack digest. The audit write
// and receipt write that follow a successful build are side effects: they
// never invalidate a pack that has already been computed.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dossier/internal/evidence/metrics"
	"dossier/internal/evidence/models"
	"dossier/internal/evidence/redact"
	"dossier/internal/evidence/receipt"
	"dossier/internal/evidence/resolver"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/audit"
	"dossier/pkg/requestcontext"
)

const buildTimeout = 10 * time.Second

// timestampLayout renders UTC instants with millisecond precision. The
// trailing literal Z keeps the strings lexicographically sortable, which the
// timeline sort relies on.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Service builds evidence packs.
type Service struct {
	resolver *resolver.Resolver
	auditor  audit.Recorder
	receipts receipt.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithReceipts enables integrity receipts for successful builds.
func WithReceipts(store receipt.Store) Option {
	return func(s *Service) { s.receipts = store }
}

// New constructs the evidence service. The resolver and auditor are required;
// everything else defaults off.
func New(r *resolver.Resolver, auditor audit.Recorder, opts ...Option) *Service {
	s := &Service{
		resolver: r,
		auditor:  auditor,
		tracer:   otel.Tracer("dossier/evidence"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build produces the evidence pack for one listing. The listing itself is
// resolved first: its absence is terminal and leaves no audit trace. Every
// other resolution failure aborts the build; a missing satellite record is
// not a failure, it degrades to an empty or placeholder section.
func (s *Service) Build(ctx context.Context, listingID id.ListingID, requester id.Requester, opts models.BuildOptions) (*models.EvidencePack, error) {
	ctx, span := s.tracer.Start(ctx, "evidence.build",
		trace.WithAttributes(
			attribute.String("listing_id", listingID.String()),
			attribute.String("format", string(opts.Format)),
		))
	defer span.End()

	start := time.Now()
	pack, err := s.build(ctx, listingID, requester, opts)
	s.metrics.ObserveBuildLatency(time.Since(start))

	switch {
	case err == nil:
		s.metrics.IncrementBuild("ok")
	case dErrors.CodeOf(err) == dErrors.CodeNotFound:
		s.metrics.IncrementBuild("not_found")
	default:
		span.RecordError(err)
		s.metrics.IncrementBuild("error")
	}
	return pack, err
}

func (s *Service) build(ctx context.Context, listingID id.ListingID, requester id.Requester, opts models.BuildOptions) (*models.EvidencePack, error) {
	ctx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	listing, err := s.resolver.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	gathered, err := s.gather(ctx, listing, opts)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "gather evidence", err)
	}

	timeline, chain, err := buildTimeline(gathered.Events)
	if err != nil {
		return nil, err
	}

	pack := &models.EvidencePack{
		Meta: models.Meta{
			GeneratedAt:   requestcontext.Now(ctx).UTC().Format(timestampLayout),
			Requester:     describeRequester(requester),
			Format:        opts.Format,
			SchemaVersion: models.SchemaVersion,
			Timezone:      models.Timezone,
		},
		Subject:  buildSubject(listing, gathered, opts),
		Timeline: timeline,
		Integrity: models.Integrity{
			TimelineHashChain: chain,
			RowCounts:         rowCounts(gathered, opts),
		},
	}

	packHash, err := hashPack(pack)
	if err != nil {
		return nil, err
	}
	pack.Integrity.PackHash = packHash

	s.recordBuild(ctx, listingID, requester, opts, pack)
	s.saveReceipt(ctx, listingID, pack)
	return pack, nil
}

// recordBuild emits the generation audit event. Failure is logged and
// counted, never propagated: the pack is already correct.
func (s *Service) recordBuild(ctx context.Context, listingID id.ListingID, requester id.Requester, opts models.BuildOptions, pack *models.EvidencePack) {
	payload := map[string]any{
		"format":     string(opts.Format),
		"pack_hash":  pack.Integrity.PackHash,
		"row_counts": pack.Integrity.RowCounts,
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		agent := useragent.New(ua)
		name, version := agent.Browser()
		payload["client"] = map[string]any{
			"browser": name,
			"version": version,
			"mobile":  agent.Mobile(),
		}
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		payload["client_ip"] = ip
	}

	event := audit.Event{
		ActorType: string(requester.Type),
		ActorID:   requester.ID.String(),
		Action:    audit.ActionEvidenceGenerated,
		Entity:    "listing",
		EntityID:  listingID.String(),
		Payload:   payload,
	}
	if err := s.auditor.Record(ctx, event); err != nil {
		s.metrics.IncrementAuditFailure()
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "audit record failed after pack build",
				"listing_id", listingID,
				"error", err,
			)
		}
	}
}

// saveReceipt caches the latest pack hash for the verify endpoint.
func (s *Service) saveReceipt(ctx context.Context, listingID id.ListingID, pack *models.EvidencePack) {
	if s.receipts == nil {
		return
	}
	r := receipt.Receipt{
		ListingID:   listingID.String(),
		PackHash:    pack.Integrity.PackHash,
		GeneratedAt: pack.Meta.GeneratedAt,
		RequestID:   requestcontext.RequestID(ctx),
	}
	if err := s.receipts.Save(ctx, r); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "receipt save failed",
			"listing_id", listingID,
			"error", err,
		)
	}
}

func describeRequester(r id.Requester) models.RequesterDesc {
	return models.RequesterDesc{
		Type:       string(r.Type),
		IDRedacted: redact.ID(r.ID.String()),
		Role:       r.Role.String(),
	}
}

func rowCounts(g *gathered, opts models.BuildOptions) map[string]int {
	counts := map[string]int{
		"listing":   1,
		"media":     len(g.Media),
		"reviews":   len(g.Reviews),
		"audit_log": len(g.Events),
		"viewings":  g.ViewingCount,
	}
	if opts.IncludeViewings {
		counts["viewings"] = len(g.Viewings)
	}
	return counts
}
