//go:build integration

package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/evidence/receipt"
	"dossier/pkg/testutil/containers"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	store := receipt.NewRedis(rc.Client, time.Hour)

	r := receipt.Receipt{
		ListingID:   "lst-0001-feedface",
		PackHash:    "abc123",
		GeneratedAt: "2026-03-14T09:30:00.000Z",
		RequestID:   "req-1",
	}
	require.NoError(t, store.Save(ctx, r))

	got, err := store.Latest(ctx, "lst-0001-feedface")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, *got)
}

func TestRedisStoreLatestWins(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	store := receipt.NewRedis(rc.Client, time.Hour)

	require.NoError(t, store.Save(ctx, receipt.Receipt{ListingID: "lst-1", PackHash: "old"}))
	require.NoError(t, store.Save(ctx, receipt.Receipt{ListingID: "lst-1", PackHash: "new"}))

	got, err := store.Latest(ctx, "lst-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.PackHash)
}

func TestRedisStoreMissingIsNil(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := receipt.NewRedis(rc.Client, time.Hour)

	got, err := store.Latest(context.Background(), "lst-unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreExpiry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	store := receipt.NewRedis(rc.Client, time.Second)

	require.NoError(t, store.Save(ctx, receipt.Receipt{ListingID: "lst-ttl", PackHash: "h"}))
	time.Sleep(1500 * time.Millisecond)

	got, err := store.Latest(ctx, "lst-ttl")
	require.NoError(t, err)
	assert.Nil(t, got)
}
