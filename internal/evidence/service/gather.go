package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"dossier/internal/evidence/models"
	mkt "dossier/internal/marketplace/models"
)

// gathered holds the raw resolved rows for one build, pre-redaction.
type gathered struct {
	Poster       *mkt.User
	Media        []mkt.MediaItem
	Reviews      []mkt.Review
	Viewings     []mkt.Viewing
	ViewingCount int
	Events       []mkt.AuditEvent
}

// gather resolves all satellite records in parallel with shared cancellation.
// The first resolution error cancels the rest; a missing record is not an
// error at this layer.
func (s *Service) gather(ctx context.Context, listing *mkt.Listing, opts models.BuildOptions) (*gathered, error) {
	g, ctx := errgroup.WithContext(ctx)
	out := &gathered{}

	g.Go(func() error {
		start := time.Now()
		poster, err := s.resolver.Poster(ctx, listing.PosterID)
		s.metrics.ObserveSourceLatency("poster", time.Since(start))
		if err != nil {
			return err
		}
		out.Poster = poster
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		media, err := s.resolver.Media(ctx, listing.ID)
		s.metrics.ObserveSourceLatency("media", time.Since(start))
		if err != nil {
			return err
		}
		out.Media = media
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		reviews, err := s.resolver.Reviews(ctx, listing.ID)
		s.metrics.ObserveSourceLatency("reviews", time.Since(start))
		if err != nil {
			return err
		}
		out.Reviews = reviews
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		events, err := s.resolver.Events(ctx, listing.ID)
		s.metrics.ObserveSourceLatency("timeline", time.Since(start))
		if err != nil {
			return err
		}
		out.Events = events
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		count, err := s.resolver.ViewingCount(ctx, listing.ID)
		s.metrics.ObserveSourceLatency("viewing_count", time.Since(start))
		if err != nil {
			return err
		}
		out.ViewingCount = count
		return nil
	})

	if opts.IncludeViewings {
		g.Go(func() error {
			start := time.Now()
			viewings, err := s.resolver.Viewings(ctx, listing.ID)
			s.metrics.ObserveSourceLatency("viewings", time.Since(start))
			if err != nil {
				return err
			}
			out.Viewings = viewings
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
