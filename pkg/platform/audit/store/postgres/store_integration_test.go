//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "dossier/pkg/platform/audit"
	auditpg "dossier/pkg/platform/audit/store/postgres"
	"dossier/pkg/testutil/containers"
)

const auditSchema = `
CREATE TABLE audit_events (
	id         TEXT PRIMARY KEY,
	listing_id TEXT,
	actor_type TEXT NOT NULL,
	actor_id   TEXT NOT NULL,
	action     TEXT NOT NULL,
	entity     TEXT,
	entity_id  TEXT,
	payload    JSONB,
	source_ref TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
`

func TestPostgresAuditStoreAppend(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	_, err := pc.DB.Exec(auditSchema)
	require.NoError(t, err)

	ctx := context.Background()
	store := auditpg.New(pc.DB)

	event := audit.Event{
		ID:        "evt-1",
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ActorType: "user",
		ActorID:   "admin-0001-aaaa",
		Action:    audit.ActionEvidenceGenerated,
		Entity:    "listing",
		EntityID:  "lst-0001-feedface",
		Payload:   map[string]any{"format": "json", "pack_hash": "abc"},
		RequestID: "req-1",
	}
	require.NoError(t, store.Append(ctx, event))

	var action, listingID string
	var payload []byte
	err = pc.DB.QueryRowContext(ctx,
		`SELECT action, listing_id, payload FROM audit_events WHERE id = $1`, "evt-1",
	).Scan(&action, &listingID, &payload)
	require.NoError(t, err)
	assert.Equal(t, audit.ActionEvidenceGenerated, action)
	assert.Equal(t, "lst-0001-feedface", listingID)
	assert.Contains(t, string(payload), "pack_hash")
}

func TestPostgresAuditStoreAppendIsIdempotent(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	_, err := pc.DB.Exec(auditSchema)
	require.NoError(t, err)

	ctx := context.Background()
	store := auditpg.New(pc.DB)

	event := audit.Event{
		ID:        "evt-dup",
		Timestamp: time.Now().UTC(),
		ActorType: "user",
		ActorID:   "admin-0001-aaaa",
		Action:    audit.ActionEvidenceVerified,
	}
	require.NoError(t, store.Append(ctx, event))
	require.NoError(t, store.Append(ctx, event))

	var count int
	require.NoError(t, pc.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE id = $1`, "evt-dup").Scan(&count))
	assert.Equal(t, 1, count)
}
