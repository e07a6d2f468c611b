package service

import (
	"dossier/internal/evidence/models"
	"dossier/internal/evidence/redact"
	mkt "dossier/internal/marketplace/models"
)

// buildSubject projects the resolved rows into their redacted pack form.
// No raw PII field crosses this boundary.
func buildSubject(listing *mkt.Listing, g *gathered, opts models.BuildOptions) models.Subject {
	subject := models.Subject{
		Listing: models.ListingSnapshot{
			ID:        listing.ID.String(),
			Title:     listing.Title,
			Locality:  listing.Locality,
			Price:     listing.Price,
			Currency:  listing.Currency,
			Status:    listing.Status,
			CreatedAt: listing.CreatedAt.UTC().Format(timestampLayout),
			Source:    string(listing.Source),
		},
		Poster:  redactPoster(listing, g.Poster),
		Media:   make([]models.MediaManifest, 0, len(g.Media)),
		Reviews: make([]models.ReviewSnapshot, 0, len(g.Reviews)),
		Matches: []string{},
	}

	for _, m := range g.Media {
		subject.Media = append(subject.Media, models.MediaManifest{
			ID:          m.ID,
			Kind:        m.Kind,
			ContentHash: m.ContentHash,
			Position:    m.Position,
			Source:      string(m.Source),
		})
	}

	for _, r := range g.Reviews {
		subject.Reviews = append(subject.Reviews, models.ReviewSnapshot{
			ID:                 r.ID,
			ReviewerIDRedacted: redact.ID(r.ReviewerID.String()),
			Rating:             r.Rating,
			Comment:            r.Comment,
			CreatedAt:          r.CreatedAt.UTC().Format(timestampLayout),
		})
	}

	if opts.IncludeViewings {
		subject.Viewings = make([]models.ViewingSnapshot, 0, len(g.Viewings))
		for _, v := range g.Viewings {
			subject.Viewings = append(subject.Viewings, models.ViewingSnapshot{
				ID:               v.ID,
				ViewerIDRedacted: redact.ID(v.ViewerID.String()),
				ScheduledAt:      v.ScheduledAt.UTC().Format(timestampLayout),
				Status:           v.Status,
			})
		}
	}

	return subject
}

// redactPoster masks the poster row. A poster missing from both user sources
// degrades to a placeholder keyed by the listing's own poster reference.
func redactPoster(listing *mkt.Listing, poster *mkt.User) models.RedactedUser {
	if poster == nil {
		return models.RedactedUser{
			IDRedacted:    redact.ID(listing.PosterID.String()),
			Name:          "",
			EmailRedacted: redact.Email(""),
			PhoneRedacted: redact.Phone(""),
			Role:          "",
			MemberSince:   "",
		}
	}
	return models.RedactedUser{
		IDRedacted:    redact.ID(poster.ID.String()),
		Name:          poster.Name,
		EmailRedacted: redact.Email(poster.Email),
		PhoneRedacted: redact.Phone(poster.Phone),
		Role:          poster.Role.String(),
		MemberSince:   poster.CreatedAt.UTC().Format(timestampLayout),
	}
}
