package domain

// Role is the closed set of marketplace roles consumed by the access gate.
// Unrecognized role strings parse to RoleUnknown rather than erroring; the
// gate routes RoleUnknown through the ownership check. This permissive
// default mirrors confirmed product behavior - do not tighten it here.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RolePoster    Role = "poster"
	RoleSeeker    Role = "seeker"
	RoleUnknown   Role = "unknown"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:     {},
	RoleModerator: {},
	RolePoster:    {},
	RoleSeeker:    {},
}

// ParseRole maps a raw role string onto the closed enumeration.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := knownRoles[r]; ok {
		return r
	}
	return RoleUnknown
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// RequesterType distinguishes who asked for an evidence pack.
type RequesterType string

const (
	RequesterTypeUser    RequesterType = "user"
	RequesterTypeService RequesterType = "service"
)

// Requester describes the authenticated caller of an evidence operation.
type Requester struct {
	Type RequesterType
	ID   UserID
	Role Role
}

// IsAuthenticated reports whether a requester identity is present.
func (r Requester) IsAuthenticated() bool {
	return !r.ID.IsNil()
}
