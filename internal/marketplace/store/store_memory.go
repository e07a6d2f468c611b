package store

import (
	"context"
	"sort"
	"sync"

	"dossier/internal/marketplace/models"
	id "dossier/pkg/domain"
)

// MemoryStore is an in-memory implementation of every resolver source port.
// Tests instantiate one per table shape (one as primary, one as legacy) and
// seed rows directly.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[id.ListingID]models.Listing
	users    map[id.UserID]models.User
	media    []models.MediaItem
	reviews  []models.Review
	viewings []models.Viewing
	events   []models.AuditEvent
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		listings: make(map[id.ListingID]models.Listing),
		users:    make(map[id.UserID]models.User),
	}
}

// SeedListing adds or replaces a listing row.
func (s *MemoryStore) SeedListing(l models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

// SeedUser adds or replaces a user row.
func (s *MemoryStore) SeedUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// SeedMedia appends a media row.
func (s *MemoryStore) SeedMedia(m models.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = append(s.media, m)
}

// SeedReview appends a review row.
func (s *MemoryStore) SeedReview(r models.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, r)
}

// SeedViewing appends a viewing row.
func (s *MemoryStore) SeedViewing(v models.Viewing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewings = append(s.viewings, v)
}

// SeedEvent appends an audit event row.
func (s *MemoryStore) SeedEvent(e models.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// ReplaceEvent swaps the event at index i; used by tamper-detection tests.
func (s *MemoryStore) ReplaceEvent(i int, e models.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[i] = e
}

func (s *MemoryStore) FindListing(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.listings[listingID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (s *MemoryStore) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListMedia(_ context.Context, listingID id.ListingID) ([]models.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MediaItem
	for _, m := range s.media {
		if m.ListingID == listingID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *MemoryStore) ListReviews(_ context.Context, listingID id.ListingID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Review
	for _, r := range s.reviews {
		if r.ListingID == listingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListViewings(_ context.Context, listingID id.ListingID) ([]models.Viewing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Viewing
	for _, v := range s.viewings {
		if v.ListingID == listingID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountViewings(ctx context.Context, listingID id.ListingID) (int, error) {
	viewings, err := s.ListViewings(ctx, listingID)
	if err != nil {
		return 0, err
	}
	return len(viewings), nil
}

// ListEvents matches by direct foreign key or by either legacy payload key,
// mirroring the SQL shape of both event tables.
func (s *MemoryStore) ListEvents(_ context.Context, listingID id.ListingID) ([]models.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditEvent
	for _, e := range s.events {
		if eventMatchesListing(e, listingID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func eventMatchesListing(e models.AuditEvent, listingID id.ListingID) bool {
	if e.ListingID == listingID {
		return true
	}
	for _, key := range []string{"listingId", "property_ref"} {
		if v, ok := e.Payload[key].(string); ok && v == listingID.String() {
			return true
		}
	}
	return false
}
