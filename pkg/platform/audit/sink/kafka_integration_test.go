//go:build integration

package sink_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "dossier/pkg/platform/audit"
	auditsink "dossier/pkg/platform/audit/sink"
	"dossier/pkg/testutil"
	"dossier/pkg/testutil/containers"
)

func TestKafkaSinkProducesAuditRecord(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	topic := "dossier.audit.test"

	sink, err := auditsink.NewKafka(ctx, rp.Brokers, topic, testutil.Logger())
	require.NoError(t, err)
	defer sink.Close()

	event := audit.Event{
		ID:        "evt-1",
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ActorType: "user",
		ActorID:   "admin-0001-aaaa",
		Action:    audit.ActionEvidenceGenerated,
		Entity:    "listing",
		EntityID:  "lst-0001-feedface",
		Payload:   map[string]any{"format": "json"},
		RequestID: "req-1",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "lst-0001-feedface", string(records[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &decoded))
	assert.Equal(t, audit.ActionEvidenceGenerated, decoded["action"])
	assert.Equal(t, "evt-1", decoded["id"])
	assert.Equal(t, "req-1", decoded["request_id"])
}
