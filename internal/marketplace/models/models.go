// Package models holds the read-only projections of marketplace entities
// that evidence packs are built from. Rows may originate from the current
// schema or the pre-migration legacy tables; stores normalize both shapes
// into these types and tag the origin in Source.
package models

import (
	"time"

	id "dossier/pkg/domain"
)

// Origin labels which table shape produced a row.
type Origin string

const (
	OriginPrimary Origin = "primary"
	OriginLegacy  Origin = "legacy"
)

// Listing is a property listing row.
type Listing struct {
	ID        id.ListingID
	PosterID  id.UserID
	Title     string
	Locality  string
	Price     float64
	Currency  string
	Status    string
	CreatedAt time.Time
	Source    Origin
}

// User is a marketplace account (poster or seeker).
type User struct {
	ID        id.UserID
	Name      string
	Email     string
	Phone     string
	Role      id.Role
	CreatedAt time.Time
	Source    Origin
}

// MediaItem is one photo/floor-plan attachment on a listing.
type MediaItem struct {
	ID          string
	ListingID   id.ListingID
	Kind        string
	URL         string
	ContentHash string
	Position    int
	Source      Origin
}

// Review is a published review against a listing.
type Review struct {
	ID         string
	ListingID  id.ListingID
	ReviewerID id.UserID
	Rating     int
	Comment    string
	CreatedAt  time.Time
	Source     Origin
}

// Viewing is a scheduled or completed property viewing.
type Viewing struct {
	ID          string
	ListingID   id.ListingID
	ViewerID    id.UserID
	ScheduledAt time.Time
	Status      string
	Source      Origin
}

// AuditEvent is one row from either audit source. Payload is the decoded
// semi-structured event payload; SourceRef cross-references the originating
// inbound event when the log recorded one.
type AuditEvent struct {
	ID        string
	ListingID id.ListingID
	ActorType string
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	Payload   map[string]any
	SourceRef string
	CreatedAt time.Time
	Source    Origin
}
