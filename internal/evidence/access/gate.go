// Package access decides who may request an evidence pack for which
// listing. The gate is a pure decision function over (requester, listing
// ownership, role); it performs no writes and emits no audit events itself.
package access

import (
	"context"
	"errors"

	"dossier/internal/evidence/resolver"
	id "dossier/pkg/domain"
	dErrors "dossier/pkg/domain-errors"
)

// Denial reasons are part of the API contract; handlers return them verbatim.
const (
	ReasonAuthRequired   = "Authentication required"
	ReasonNotYourListing = "not your listing"
	ReasonSeekerDenied   = "seekers cannot access evidence packs"
	ReasonListingMissing = "listing not found"
)

// Decision is the gate's verdict. Reason is set only on denial.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Gate evaluates evidence-pack access. It depends on the resolver only to
// look up listing ownership.
type Gate struct {
	resolver *resolver.Resolver
}

// New constructs an access gate.
func New(r *resolver.Resolver) *Gate {
	return &Gate{resolver: r}
}

// CanAccess evaluates the branches in a fixed order:
//
//  1. no authenticated requester: deny
//  2. admin or moderator: allow unconditionally
//  3. poster: allow only when the listing exists and they own it
//  4. seeker: deny unconditionally
//  5. unknown role: same ownership check as poster
//
// Routing unknown roles through the ownership check (rather than denying
// outright) is confirmed product behavior; see DESIGN.md before changing it.
// The returned error is non-nil only for infrastructure failures.
func (g *Gate) CanAccess(ctx context.Context, requester id.Requester, listingID id.ListingID) (Decision, error) {
	if !requester.IsAuthenticated() {
		return Decision{Reason: ReasonAuthRequired}, nil
	}

	switch requester.Role {
	case id.RoleAdmin, id.RoleModerator:
		return Decision{Allowed: true}, nil
	case id.RoleSeeker:
		return Decision{Reason: ReasonSeekerDenied}, nil
	case id.RolePoster, id.RoleUnknown:
		return g.checkOwnership(ctx, requester, listingID)
	default:
		return g.checkOwnership(ctx, requester, listingID)
	}
}

func (g *Gate) checkOwnership(ctx context.Context, requester id.Requester, listingID id.ListingID) (Decision, error) {
	listing, err := g.resolver.Listing(ctx, listingID)
	if err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) && de.Code == dErrors.CodeNotFound {
			return Decision{Reason: ReasonListingMissing}, nil
		}
		return Decision{}, err
	}
	if listing.PosterID == requester.ID {
		return Decision{Allowed: true}, nil
	}
	return Decision{Reason: ReasonNotYourListing}, nil
}
