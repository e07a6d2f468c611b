package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/evidence/models"
	"dossier/internal/evidence/receipt"
	"dossier/internal/evidence/resolver"
	mkt "dossier/internal/marketplace/models"
	"dossier/internal/marketplace/store"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/audit"
	auditmem "dossier/pkg/platform/audit/store/memory"
	"dossier/pkg/requestcontext"
)

var (
	frozenNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	adminRequester = id.Requester{
		Type: id.RequesterTypeUser,
		ID:   "admin-0001-aaaa",
		Role: id.RoleAdmin,
	}
)

type fixture struct {
	primary *store.MemoryStore
	legacy  *store.MemoryStore
	audit   *auditmem.Store
	svc     *Service
}

// newFixture seeds a listing with a poster, one photo, one review, and a
// timeline split across both event logs: three rows in the structured log,
// two in the legacy log.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	primary := store.NewMemory()
	legacy := store.NewMemory()

	primary.SeedListing(mkt.Listing{
		ID:        "lst-0001-feedface",
		PosterID:  "usr-0001-deadbeef",
		Title:     "Two-bedroom maisonette",
		Locality:  "Sliema",
		Price:     1250,
		Currency:  "EUR",
		Status:    "active",
		CreatedAt: time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC),
		Source:    mkt.OriginPrimary,
	})
	primary.SeedUser(mkt.User{
		ID:        "usr-0001-deadbeef",
		Name:      "Maria Vella",
		Email:     "maria.vella@example.com",
		Phone:     "+35699123456",
		Role:      id.RolePoster,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Source:    mkt.OriginPrimary,
	})
	primary.SeedMedia(mkt.MediaItem{
		ID:          "med-1",
		ListingID:   "lst-0001-feedface",
		Kind:        "photo",
		ContentHash: "a1b2c3",
		Position:    1,
		Source:      mkt.OriginPrimary,
	})
	primary.SeedReview(mkt.Review{
		ID:         "rev-1",
		ListingID:  "lst-0001-feedface",
		ReviewerID: "usr-0002-cafebabe",
		Rating:     4,
		Comment:    "Bright and quiet",
		CreatedAt:  time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		Source:     mkt.OriginPrimary,
	})
	primary.SeedViewing(mkt.Viewing{
		ID:          "vw-1",
		ListingID:   "lst-0001-feedface",
		ViewerID:    "usr-0003-0badf00d",
		ScheduledAt: time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC),
		Status:      "completed",
		Source:      mkt.OriginPrimary,
	})

	for _, e := range []mkt.AuditEvent{
		{
			ID: "evt-p1", ListingID: "lst-0001-feedface",
			ActorType: "user", ActorID: "usr-0001-deadbeef",
			Action: "listing_created", Entity: "listing", EntityID: "lst-0001-feedface",
			Payload:   map[string]any{"status": "active", "phone": "+35699123456"},
			CreatedAt: time.Date(2025, 11, 2, 8, 0, 1, 0, time.UTC),
			Source:    mkt.OriginPrimary,
		},
		{
			ID: "evt-p2", ListingID: "lst-0001-feedface",
			ActorType: "user", ActorID: "usr-0001-deadbeef",
			Action: "price_changed", Entity: "listing", EntityID: "lst-0001-feedface",
			Payload:   map[string]any{"old": 1300, "new": 1250},
			CreatedAt: time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC),
			Source:    mkt.OriginPrimary,
		},
		{
			ID: "evt-p3", ListingID: "lst-0001-feedface",
			ActorType: "user", ActorID: "usr-0002-cafebabe",
			Action: "review_published", Entity: "review", EntityID: "rev-1",
			Payload:   map[string]any{"rating": 4},
			CreatedAt: time.Date(2026, 1, 10, 12, 0, 5, 0, time.UTC),
			Source:    mkt.OriginPrimary,
		},
	} {
		primary.SeedEvent(e)
	}

	legacy.SeedEvent(mkt.AuditEvent{
		ID:        "evt-l1",
		ActorType: "user", ActorID: "usr-0001-deadbeef",
		Action: "listing_imported", Entity: "listing", EntityID: "lst-0001-feedface",
		Payload:   map[string]any{"property_ref": "lst-0001-feedface"},
		SourceRef: "import-batch-7",
		CreatedAt: time.Date(2025, 11, 1, 23, 0, 0, 0, time.UTC),
		Source:    mkt.OriginLegacy,
	})
	legacy.SeedEvent(mkt.AuditEvent{
		ID:        "evt-l2",
		ActorType: "system", ActorID: "svc-moderation-queue",
		Action: "listing_approved", Entity: "listing", EntityID: "lst-0001-feedface",
		Payload:   map[string]any{"listingId": "lst-0001-feedface", "moderator_email": "mod@example.com"},
		CreatedAt: time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC),
		Source:    mkt.OriginLegacy,
	})

	r := resolver.New(resolver.Sources{
		Listings: []resolver.ListingSource{primary, legacy},
		Users:    []resolver.UserSource{primary, legacy},
		Media:    []resolver.MediaSource{primary, legacy},
		Reviews:  []resolver.ReviewSource{primary, legacy},
		Viewings: []resolver.ViewingSource{primary, legacy},
		Events:   []resolver.EventSource{primary, legacy},
	})

	auditStore := auditmem.New()
	svc := New(r, audit.NewStoreRecorder(auditStore), opts...)
	return &fixture{primary: primary, legacy: legacy, audit: auditStore, svc: svc}
}

func frozenCtx() context.Context {
	ctx := requestcontext.WithTime(context.Background(), frozenNow)
	return requestcontext.WithRequestID(ctx, "req-test-1")
}

func TestBuildMergesBothEventLogs(t *testing.T) {
	f := newFixture(t)

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)

	require.Len(t, pack.Timeline, 5)
	assert.Equal(t, 5, pack.Integrity.RowCounts["audit_log"])

	// Chronological order across both logs.
	actions := make([]string, 0, len(pack.Timeline))
	for _, e := range pack.Timeline {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		"listing_imported",
		"listing_created",
		"listing_approved",
		"price_changed",
		"review_published",
	}, actions)

	// The legacy import carries its originating event reference.
	assert.Equal(t, []string{"import-batch-7"}, pack.Timeline[0].SourceRefs)

	for _, e := range pack.Timeline {
		assert.NotEmpty(t, e.EntryHash)
	}
	assert.NotEmpty(t, pack.Integrity.TimelineHashChain)
	assert.NotEmpty(t, pack.Integrity.PackHash)
}

func TestBuildRedactsBeforePacking(t *testing.T) {
	f := newFixture(t)

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)

	poster := pack.Subject.Poster
	assert.Equal(t, "usr-****beef", poster.IDRedacted)
	assert.Equal(t, "ma***@example.com", poster.EmailRedacted)
	assert.Equal(t, "***-***-456", poster.PhoneRedacted)

	// Sensitive payload keys are masked in the timeline.
	created := pack.Timeline[1]
	require.Equal(t, "listing_created", created.Action)
	assert.Equal(t, "[REDACTED]", created.PayloadRedacted["phone"])
	assert.Equal(t, "active", created.PayloadRedacted["status"])

	approved := pack.Timeline[2]
	require.Equal(t, "listing_approved", approved.Action)
	assert.Equal(t, "[REDACTED]", approved.PayloadRedacted["moderator_email"])

	assert.Equal(t, "admi****aaaa", pack.Meta.Requester.IDRedacted)
}

func TestBuildMeta(t *testing.T) {
	f := newFixture(t)

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatPDF})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-14T09:30:00.000Z", pack.Meta.GeneratedAt)
	assert.Equal(t, models.FormatPDF, pack.Meta.Format)
	assert.Equal(t, models.SchemaVersion, pack.Meta.SchemaVersion)
	assert.Equal(t, models.Timezone, pack.Meta.Timezone)
	assert.Equal(t, "user", pack.Meta.Requester.Type)
	assert.Equal(t, "admin", pack.Meta.Requester.Role)
	assert.Empty(t, pack.Subject.Matches)
}

func TestBuildIsDeterministicUnderFrozenInputs(t *testing.T) {
	f := newFixture(t)
	opts := models.BuildOptions{Format: models.FormatJSON}

	first, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, opts)
	require.NoError(t, err)
	second, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Integrity.PackHash, second.Integrity.PackHash)
	assert.Equal(t, first.Integrity.TimelineHashChain, second.Integrity.TimelineHashChain)
}

func TestBuildDetectsSourceRowMutation(t *testing.T) {
	f := newFixture(t)
	opts := models.BuildOptions{Format: models.FormatJSON}

	before, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, opts)
	require.NoError(t, err)

	// Mutate one of the five source rows and rebuild.
	f.legacy.ReplaceEvent(1, mkt.AuditEvent{
		ID:        "evt-l2",
		ActorType: "system", ActorID: "svc-moderation-queue",
		Action: "listing_approved", Entity: "listing", EntityID: "lst-0001-feedface",
		Payload:   map[string]any{"listingId": "lst-0001-feedface", "note": "expedited"},
		CreatedAt: time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC),
		Source:    mkt.OriginLegacy,
	})

	after, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, opts)
	require.NoError(t, err)

	assert.NotEqual(t, before.Integrity.TimelineHashChain, after.Integrity.TimelineHashChain)
	assert.NotEqual(t, before.Integrity.PackHash, after.Integrity.PackHash)
}

func TestBuildListingNotFound(t *testing.T) {
	f := newFixture(t)

	pack, err := f.svc.Build(frozenCtx(), "lst-missing", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.Error(t, err)
	assert.Nil(t, pack)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	// A failed root lookup leaves no audit trace.
	assert.Empty(t, f.audit.Events())
}

func TestBuildWritesAuditEvent(t *testing.T) {
	f := newFixture(t)

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)

	events := f.audit.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, audit.ActionEvidenceGenerated, e.Action)
	assert.Equal(t, "listing", e.Entity)
	assert.Equal(t, "lst-0001-feedface", e.EntityID)
	assert.Equal(t, "user", e.ActorType)
	assert.Equal(t, "admin-0001-aaaa", e.ActorID)
	assert.Equal(t, pack.Integrity.PackHash, e.Payload["pack_hash"])
	assert.Equal(t, "json", e.Payload["format"])
	assert.Equal(t, frozenNow, e.Timestamp)
	assert.Equal(t, "req-test-1", e.RequestID)
}

func TestBuildSurvivesAuditFailure(t *testing.T) {
	f := newFixture(t)
	f.audit.FailNext = errors.New("event log unavailable")

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)
	assert.NotEmpty(t, pack.Integrity.PackHash)
	assert.Empty(t, f.audit.Events())
}

func TestBuildViewingsOptional(t *testing.T) {
	f := newFixture(t)

	without, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)
	assert.Nil(t, without.Subject.Viewings)
	// The count still comes from the resolver even when rows are excluded.
	assert.Equal(t, 1, without.Integrity.RowCounts["viewings"])

	with, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{IncludeViewings: true, Format: models.FormatJSON})
	require.NoError(t, err)
	require.Len(t, with.Subject.Viewings, 1)
	assert.Equal(t, "usr-****f00d", with.Subject.Viewings[0].ViewerIDRedacted)
	assert.Equal(t, 1, with.Integrity.RowCounts["viewings"])

	assert.NotEqual(t, without.Integrity.PackHash, with.Integrity.PackHash)
}

func TestBuildSavesReceipt(t *testing.T) {
	receipts := receipt.NewMemory()
	f := newFixture(t, WithReceipts(receipts))

	pack, err := f.svc.Build(frozenCtx(), "lst-0001-feedface", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)

	r, err := receipts.Latest(context.Background(), "lst-0001-feedface")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, pack.Integrity.PackHash, r.PackHash)
	assert.Equal(t, pack.Meta.GeneratedAt, r.GeneratedAt)
	assert.Equal(t, "req-test-1", r.RequestID)
}

func TestBuildPlaceholderPosterWhenUnresolved(t *testing.T) {
	f := newFixture(t)

	f.primary.SeedListing(mkt.Listing{
		ID:        "lst-0002-orphan00",
		PosterID:  "usr-gone-12345678",
		Title:     "Garage in Mosta",
		Locality:  "Mosta",
		Price:     150,
		Currency:  "EUR",
		Status:    "active",
		CreatedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Source:    mkt.OriginPrimary,
	})

	pack, err := f.svc.Build(frozenCtx(), "lst-0002-orphan00", adminRequester, models.BuildOptions{Format: models.FormatJSON})
	require.NoError(t, err)

	poster := pack.Subject.Poster
	assert.Equal(t, "usr-****5678", poster.IDRedacted)
	assert.Equal(t, "none", poster.EmailRedacted)
	assert.Equal(t, "none", poster.PhoneRedacted)
	assert.Empty(t, poster.Name)
}
