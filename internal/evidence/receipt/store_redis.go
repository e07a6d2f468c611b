// Package receipt keeps short-lived integrity receipts: the pack hash last
// issued for a listing. The verify endpoint consults them to tell a caller
// whether a pack they hold is the most recently issued one. Receipts are a
// convenience index - losing them never invalidates a pack, which carries
// its own integrity.
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "dossier/pkg/domain"
)

// Receipt records one successful pack build.
type Receipt struct {
	ListingID   string `json:"listing_id"`
	PackHash    string `json:"pack_hash"`
	GeneratedAt string `json:"generated_at"`
	RequestID   string `json:"request_id,omitempty"`
}

// Store persists receipts keyed by listing.
type Store interface {
	Save(ctx context.Context, r Receipt) error
	Latest(ctx context.Context, listingID id.ListingID) (*Receipt, error)
}

// RedisStore implements Store over redis with a TTL per receipt.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed receipt store.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func receiptKey(listingID string) string {
	return "evidence:receipt:" + listingID
}

func (s *RedisStore) Save(ctx context.Context, r Receipt) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	if err := s.client.Set(ctx, receiptKey(r.ListingID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// Latest returns the most recent receipt, or nil when none is cached.
func (s *RedisStore) Latest(ctx context.Context, listingID id.ListingID) (*Receipt, error) {
	raw, err := s.client.Get(ctx, receiptKey(listingID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load receipt: %w", err)
	}
	var r Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &r, nil
}
