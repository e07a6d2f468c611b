package domain

// ListingID identifies a property listing. Historical rows may carry
// non-UUID identifiers from the legacy schema, so this stays a string
// primitive rather than a uuid wrapper.
type ListingID string

func (id ListingID) String() string {
	return string(id)
}

// IsNil returns true if the listing ID is empty.
func (id ListingID) IsNil() bool {
	return id == ""
}

// UserID identifies a marketplace user (poster, seeker, or staff).
type UserID string

func (id UserID) String() string {
	return string(id)
}

// IsNil returns true if the user ID is empty.
func (id UserID) IsNil() bool {
	return id == ""
}
