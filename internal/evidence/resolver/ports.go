package resolver

import (
	"context"

	"dossier/internal/marketplace/models"
	id "dossier/pkg/domain"
)

// Source ports are implemented once per table shape (primary and legacy) by
// the marketplace store. Absence is never an infrastructure error: single
// lookups return nil, nil and list lookups return an empty slice.

// ListingSource finds a listing by ID in one table shape.
type ListingSource interface {
	FindListing(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
}

// UserSource finds a user by ID in one table shape.
type UserSource interface {
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
}

// MediaSource lists a listing's media in one table shape.
type MediaSource interface {
	ListMedia(ctx context.Context, listingID id.ListingID) ([]models.MediaItem, error)
}

// ReviewSource lists reviews for a listing. The primary shape matches the
// listing_id column, the legacy shape the property_id column.
type ReviewSource interface {
	ListReviews(ctx context.Context, listingID id.ListingID) ([]models.Review, error)
}

// ViewingSource lists and counts viewings for a listing.
type ViewingSource interface {
	ListViewings(ctx context.Context, listingID id.ListingID) ([]models.Viewing, error)
	CountViewings(ctx context.Context, listingID id.ListingID) (int, error)
}

// EventSource lists audit events belonging to a listing. Implementations
// match by the direct listing foreign key OR by the legacy payload keys
// (listingId, property_ref) inside the event's JSON payload.
type EventSource interface {
	ListEvents(ctx context.Context, listingID id.ListingID) ([]models.AuditEvent, error)
}
