package receipt

import (
	"context"
	"sync"

	id "dossier/pkg/domain"
)

// MemoryStore is an in-memory receipt store for tests and for deployments
// that run without redis.
type MemoryStore struct {
	mu       sync.RWMutex
	receipts map[string]Receipt
}

// NewMemory creates an empty in-memory receipt store.
func NewMemory() *MemoryStore {
	return &MemoryStore{receipts: make(map[string]Receipt)}
}

func (s *MemoryStore) Save(_ context.Context, r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[r.ListingID] = r
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, listingID id.ListingID) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.receipts[listingID.String()]; ok {
		return &r, nil
	}
	return nil, nil
}
