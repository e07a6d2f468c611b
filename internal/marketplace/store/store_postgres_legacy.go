package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dossier/internal/marketplace/models"
	id "dossier/pkg/domain"
)

// LegacyStore reads the pre-migration table shapes and normalizes them into
// the same models the primary shape produces. Legacy rows are immutable
// historical data; nothing writes to these tables anymore.
type LegacyStore struct {
	db *sql.DB
}

// NewLegacy constructs a store over the legacy schema.
func NewLegacy(db *sql.DB) *LegacyStore {
	return &LegacyStore{db: db}
}

func (s *LegacyStore) FindListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `
		SELECT ref, owner_id, headline, town, monthly_price, state, added_on
		FROM legacy_listings
		WHERE ref = $1
	`
	var l models.Listing
	var ref, ownerID string
	err := s.db.QueryRowContext(ctx, query, listingID.String()).Scan(
		&ref, &ownerID, &l.Title, &l.Locality, &l.Price, &l.Status, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query legacy listing: %w", err)
	}
	l.ID = id.ListingID(ref)
	l.PosterID = id.UserID(ownerID)
	// The legacy schema predates multi-currency support.
	l.Currency = "EUR"
	l.Source = models.OriginLegacy
	return &l, nil
}

func (s *LegacyStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT uid, full_name, contact_email, contact_phone, user_type, joined_on
		FROM legacy_users
		WHERE uid = $1
	`
	var u models.User
	var uid, userType string
	var email, phone sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&uid, &u.Name, &email, &phone, &userType, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query legacy user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Email = email.String
	u.Phone = phone.String
	u.Role = id.ParseRole(userType)
	u.Source = models.OriginLegacy
	return &u, nil
}

func (s *LegacyStore) ListMedia(ctx context.Context, listingID id.ListingID) ([]models.MediaItem, error) {
	query := `
		SELECT id, listing_ref, media_type, file_url, checksum, seq
		FROM legacy_media
		WHERE listing_ref = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query legacy media: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var m models.MediaItem
		var ref string
		var url, checksum sql.NullString
		if err := rows.Scan(&m.ID, &ref, &m.Kind, &url, &checksum, &m.Position); err != nil {
			return nil, fmt.Errorf("scan legacy media: %w", err)
		}
		m.ListingID = id.ListingID(ref)
		m.URL = url.String
		m.ContentHash = checksum.String
		m.Source = models.OriginLegacy
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy media: %w", err)
	}
	return items, nil
}

// ListEvents reads the legacy event_log. Older writers only recorded the
// listing inside the JSON details column, so the match is FK-or-payload.
func (s *LegacyStore) ListEvents(ctx context.Context, listingID id.ListingID) ([]models.AuditEvent, error) {
	query := `
		SELECT id, COALESCE(listing_ref, ''), actor_type, actor_id, event_type, entity, entity_id, details, source_event, logged_at
		FROM event_log
		WHERE listing_ref = $1
		   OR details->>'listingId' = $1
		   OR details->>'property_ref' = $1
		ORDER BY logged_at
	`
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query legacy events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows, models.OriginLegacy)
}
