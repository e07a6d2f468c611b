// Package store implements the resolver source ports against PostgreSQL.
// The marketplace went through a schema migration: current rows live in the
// primary tables, historical rows in the legacy-shaped tables. Both shapes
// normalize into the same models so the resolver can chain them.
//
// All queries are read-only; pack builds never write through this package.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dossier/internal/marketplace/models"
	id "dossier/pkg/domain"
)

// PrimaryStore reads the current table shapes.
type PrimaryStore struct {
	db *sql.DB
}

// NewPrimary constructs a store over the primary schema.
func NewPrimary(db *sql.DB) *PrimaryStore {
	return &PrimaryStore{db: db}
}

func (s *PrimaryStore) FindListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `
		SELECT id, poster_id, title, locality, price, currency, status, created_at
		FROM listings
		WHERE id = $1
	`
	var l models.Listing
	var lid, posterID string
	err := s.db.QueryRowContext(ctx, query, listingID.String()).Scan(
		&lid, &posterID, &l.Title, &l.Locality, &l.Price, &l.Currency, &l.Status, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}
	l.ID = id.ListingID(lid)
	l.PosterID = id.UserID(posterID)
	l.Source = models.OriginPrimary
	return &l, nil
}

func (s *PrimaryStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, name, email, phone, role, created_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	var uid, role string
	var email, phone sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&uid, &u.Name, &email, &phone, &role, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Email = email.String
	u.Phone = phone.String
	u.Role = id.ParseRole(role)
	u.Source = models.OriginPrimary
	return &u, nil
}

func (s *PrimaryStore) ListMedia(ctx context.Context, listingID id.ListingID) ([]models.MediaItem, error) {
	query := `
		SELECT id, listing_id, kind, url, content_hash, position
		FROM listing_media
		WHERE listing_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var m models.MediaItem
		var lid string
		var url, hash sql.NullString
		if err := rows.Scan(&m.ID, &lid, &m.Kind, &url, &hash, &m.Position); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		m.ListingID = id.ListingID(lid)
		m.URL = url.String
		m.ContentHash = hash.String
		m.Source = models.OriginPrimary
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return items, nil
}

// ListReviews matches either foreign-key column: listing_id on rows written
// after the migration, property_id on rows carried over from before it.
func (s *PrimaryStore) ListReviews(ctx context.Context, listingID id.ListingID) ([]models.Review, error) {
	query := `
		SELECT id, COALESCE(listing_id, property_id), reviewer_id, rating, comment, created_at
		FROM listing_reviews
		WHERE listing_id = $1 OR property_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		var lid, reviewerID string
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &lid, &reviewerID, &r.Rating, &comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.ListingID = id.ListingID(lid)
		r.ReviewerID = id.UserID(reviewerID)
		r.Comment = comment.String
		r.Source = models.OriginPrimary
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

func (s *PrimaryStore) ListViewings(ctx context.Context, listingID id.ListingID) ([]models.Viewing, error) {
	query := `
		SELECT id, listing_id, viewer_id, scheduled_at, status
		FROM viewings
		WHERE listing_id = $1
		ORDER BY scheduled_at
	`
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query viewings: %w", err)
	}
	defer rows.Close()

	var viewings []models.Viewing
	for rows.Next() {
		var v models.Viewing
		var lid, viewerID string
		if err := rows.Scan(&v.ID, &lid, &viewerID, &v.ScheduledAt, &v.Status); err != nil {
			return nil, fmt.Errorf("scan viewing: %w", err)
		}
		v.ListingID = id.ListingID(lid)
		v.ViewerID = id.UserID(viewerID)
		v.Source = models.OriginPrimary
		viewings = append(viewings, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate viewings: %w", err)
	}
	return viewings, nil
}

func (s *PrimaryStore) CountViewings(ctx context.Context, listingID id.ListingID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM viewings WHERE listing_id = $1`,
		listingID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count viewings: %w", err)
	}
	return count, nil
}

// ListEvents matches by the listing foreign key or by either legacy payload
// key that older writers embedded in the JSON payload.
func (s *PrimaryStore) ListEvents(ctx context.Context, listingID id.ListingID) ([]models.AuditEvent, error) {
	query := `
		SELECT id, COALESCE(listing_id, ''), actor_type, actor_id, action, entity, entity_id, payload, source_ref, created_at
		FROM audit_events
		WHERE listing_id = $1
		   OR payload->>'listingId' = $1
		   OR payload->>'property_ref' = $1
		ORDER BY created_at
	`
	return s.scanEvents(ctx, query, listingID, models.OriginPrimary)
}

func (s *PrimaryStore) scanEvents(ctx context.Context, query string, listingID id.ListingID, origin models.Origin) ([]models.AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows, origin)
}

func collectEvents(rows *sql.Rows, origin models.Origin) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		var lid string
		var entity, entityID, sourceRef sql.NullString
		var payload []byte
		if err := rows.Scan(&e.ID, &lid, &e.ActorType, &e.ActorID, &e.Action, &entity, &entityID, &payload, &sourceRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ListingID = id.ListingID(lid)
		e.Entity = entity.String
		e.EntityID = entityID.String
		e.SourceRef = sourceRef.String
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload %s: %w", e.ID, err)
			}
		}
		e.Source = origin
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
