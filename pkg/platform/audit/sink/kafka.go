// Package sink streams audit events to Kafka. The topic is the durable,
// externally consumable audit feed; the postgres store remains the queryable
// source for timeline reconstruction.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "dossier/pkg/platform/audit"
)

// Kafka implements audit.Store by producing JSON records to a topic,
// keyed by entity ID so per-listing ordering is preserved.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// kafkaPayload is the wire format on the audit topic.
type kafkaPayload struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// NewKafka connects a producer and ensures the topic exists. A topic that
// already exists is not an error.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// CreateTopic reports TOPIC_ALREADY_EXISTS through the response
		// error; anything else is worth surfacing but not fatal, since the
		// cluster may manage topics externally.
		logger.Warn("audit topic create", "topic", topic, "error", err)
	}

	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

// Append produces one event synchronously. The async audit publisher wraps
// this, so callers never block on broker round-trips.
func (k *Kafka) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(kafkaPayload{
		ID:        event.ID,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorType: event.ActorType,
		ActorID:   event.ActorID,
		Action:    event.Action,
		Entity:    event.Entity,
		EntityID:  event.EntityID,
		Payload:   event.Payload,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.EntityID),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() {
	k.client.Close()
}
