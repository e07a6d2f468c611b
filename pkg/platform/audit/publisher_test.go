package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/pkg/requestcontext"
	"dossier/pkg/testutil"

	audit "dossier/pkg/platform/audit"
	auditmem "dossier/pkg/platform/audit/store/memory"
)

func TestPublisherDeliversToAllSinks(t *testing.T) {
	first := auditmem.New()
	second := auditmem.New()
	p := audit.NewPublisher(testutil.Logger(), first, second)

	err := p.Record(context.Background(), audit.Event{
		Action:   audit.ActionEvidenceGenerated,
		Entity:   "listing",
		EntityID: "lst-1",
	})
	require.NoError(t, err)
	p.Close()

	require.Len(t, first.Events(), 1)
	require.Len(t, second.Events(), 1)
	assert.Equal(t, first.Events()[0].ID, second.Events()[0].ID)
}

func TestPublisherFillsDefaultsFromContext(t *testing.T) {
	store := auditmem.New()
	p := audit.NewPublisher(testutil.Logger(), store)

	frozen := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), frozen)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	require.NoError(t, p.Record(ctx, audit.Event{Action: audit.ActionAccessDenied}))
	p.Close()

	events := store.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, frozen, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
}

func TestPublisherSinkFailureDoesNotPropagate(t *testing.T) {
	store := auditmem.New()
	store.FailNext = assert.AnError
	p := audit.NewPublisher(testutil.Logger(), store)

	require.NoError(t, p.Record(context.Background(), audit.Event{Action: audit.ActionEvidenceVerified}))
	p.Close()

	assert.Empty(t, store.Events())
	assert.Zero(t, p.Dropped())
}

func TestPublisherCloseDrains(t *testing.T) {
	store := auditmem.New()
	p := audit.NewPublisher(testutil.Logger(), store)

	for i := 0; i < 50; i++ {
		require.NoError(t, p.Record(context.Background(), audit.Event{Action: "bulk"}))
	}
	p.Close()

	assert.Len(t, store.Events(), 50)
}
