// Package resolver fetches logical marketplace entities across the schema
// migration boundary. Each entity has an ordered list of source providers:
// the primary table shape is tried first and the legacy shape only when the
// primary has nothing. The timeline is the exception - independent events
// live in both audit sources, so both are always queried and concatenated.
package resolver

import (
	"context"
	"fmt"

	"dossier/internal/marketplace/models"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
)

// Sources wires the ordered providers per entity. Slices are tried in order;
// Events sources are all queried unconditionally.
type Sources struct {
	Listings []ListingSource
	Users    []UserSource
	Media    []MediaSource
	Reviews  []ReviewSource
	Viewings []ViewingSource
	Events   []EventSource
}

// Resolver resolves entities through the configured sources.
type Resolver struct {
	src Sources
}

// New constructs a resolver over the given sources.
func New(src Sources) *Resolver {
	return &Resolver{src: src}
}

// Listing returns the listing from the first source that has it. A listing
// absent from every source is a hard CodeNotFound: nothing else in a pack
// build can proceed without the root entity.
func (r *Resolver) Listing(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	for _, src := range r.src.Listings {
		listing, err := src.FindListing(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("resolve listing %s: %w", listingID, err)
		}
		if listing != nil {
			return listing, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeNotFound, "listing %s not found", listingID)
}

// Poster returns the listing poster's user row, or nil when neither source
// has it. A missing poster degrades the pack (redacted placeholder), it does
// not fail the build.
func (r *Resolver) Poster(ctx context.Context, userID id.UserID) (*models.User, error) {
	for _, src := range r.src.Users {
		user, err := src.FindUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("resolve poster %s: %w", userID, err)
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

// Media returns the first non-empty media set between the source shapes.
func (r *Resolver) Media(ctx context.Context, listingID id.ListingID) ([]models.MediaItem, error) {
	for _, src := range r.src.Media {
		media, err := src.ListMedia(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("resolve media for %s: %w", listingID, err)
		}
		if len(media) > 0 {
			return media, nil
		}
	}
	return nil, nil
}

// Reviews returns the first non-empty review set between the source shapes.
func (r *Resolver) Reviews(ctx context.Context, listingID id.ListingID) ([]models.Review, error) {
	for _, src := range r.src.Reviews {
		reviews, err := src.ListReviews(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("resolve reviews for %s: %w", listingID, err)
		}
		if len(reviews) > 0 {
			return reviews, nil
		}
	}
	return nil, nil
}

// Viewings returns the first non-empty viewing set.
func (r *Resolver) Viewings(ctx context.Context, listingID id.ListingID) ([]models.Viewing, error) {
	for _, src := range r.src.Viewings {
		viewings, err := src.ListViewings(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("resolve viewings for %s: %w", listingID, err)
		}
		if len(viewings) > 0 {
			return viewings, nil
		}
	}
	return nil, nil
}

// ViewingCount returns the viewing count from the first source reporting a
// non-zero count, falling back to zero.
func (r *Resolver) ViewingCount(ctx context.Context, listingID id.ListingID) (int, error) {
	for _, src := range r.src.Viewings {
		count, err := src.CountViewings(ctx, listingID)
		if err != nil {
			return 0, fmt.Errorf("count viewings for %s: %w", listingID, err)
		}
		if count > 0 {
			return count, nil
		}
	}
	return 0, nil
}

// Events queries every event source and concatenates the results. Ordering
// here is whatever the sources returned; the assembler re-sorts and hashes.
func (r *Resolver) Events(ctx context.Context, listingID id.ListingID) ([]models.AuditEvent, error) {
	var all []models.AuditEvent
	for _, src := range r.src.Events {
		events, err := src.ListEvents(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("resolve events for %s: %w", listingID, err)
		}
		all = append(all, events...)
	}
	return all, nil
}
