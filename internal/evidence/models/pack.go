// Package models defines the Evidence Pack artifact. A pack is immutable
// once returned: every PII field is already redacted, every hash already
// computed. Field names and json tags are part of the regulator-facing
// contract - changing any of them changes historical pack hashes.
package models

// SchemaVersion identifies the pack contract version.
const SchemaVersion = "1.0"

// Timezone is the fixed timezone label stamped into every pack. Timestamps
// themselves are UTC; the label records the marketplace's jurisdiction.
const Timezone = "Europe/Malta"

// Format is the requested output format. PDF and ZIP are rendered by
// downstream converters from the same pack value; the hash never depends on
// the chosen format converter.
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatZIP  Format = "zip"
)

// ParseFormat validates a requested format, defaulting to JSON.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatJSON, FormatPDF, FormatZIP:
		return Format(s), true
	case "":
		return FormatJSON, true
	default:
		return FormatJSON, false
	}
}

// BuildOptions selects optional pack content.
type BuildOptions struct {
	IncludeViewings bool
	Format          Format
}

// EvidencePack is the complete audit dossier for one listing.
type EvidencePack struct {
	Meta      Meta            `json:"meta"`
	Subject   Subject         `json:"subject"`
	Timeline  []TimelineEntry `json:"timeline"`
	Integrity Integrity       `json:"integrity"`
}

// Meta describes the generation event itself. It is part of the hashed body:
// each pack is a unique, attributable snapshot.
type Meta struct {
	GeneratedAt   string        `json:"generated_at"`
	Requester     RequesterDesc `json:"requester"`
	Format        Format        `json:"format"`
	SchemaVersion string        `json:"schema_version"`
	Timezone      string        `json:"timezone"`
}

// RequesterDesc identifies who requested the pack, with the ID redacted.
type RequesterDesc struct {
	Type       string `json:"type"`
	IDRedacted string `json:"id_redacted"`
	Role       string `json:"role"`
}

// Subject is the listing under audit plus its redacted satellite records.
type Subject struct {
	Listing  ListingSnapshot   `json:"listing"`
	Poster   RedactedUser      `json:"poster"`
	Media    []MediaManifest   `json:"media"`
	Reviews  []ReviewSnapshot  `json:"reviews"`
	Viewings []ViewingSnapshot `json:"viewings,omitempty"`
	// Matches is reserved for cross-listing dispute bundles; always empty
	// in the current schema version.
	Matches []string `json:"matches"`
}

// ListingSnapshot is the listing row frozen at generation time.
type ListingSnapshot struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Locality  string  `json:"locality"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	Source    string  `json:"source"`
}

// RedactedUser is a user projection with all PII masked.
type RedactedUser struct {
	IDRedacted    string `json:"id_redacted"`
	Name          string `json:"name"`
	EmailRedacted string `json:"email_redacted"`
	PhoneRedacted string `json:"phone_redacted"`
	Role          string `json:"role"`
	MemberSince   string `json:"member_since"`
}

// MediaManifest lists an attachment by content hash, not by URL contents.
type MediaManifest struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	ContentHash string `json:"content_hash"`
	Position    int    `json:"position"`
	Source      string `json:"source"`
}

// ReviewSnapshot is one review with the reviewer identity redacted.
type ReviewSnapshot struct {
	ID                 string `json:"id"`
	ReviewerIDRedacted string `json:"reviewer_id_redacted"`
	Rating             int    `json:"rating"`
	Comment            string `json:"comment"`
	CreatedAt          string `json:"created_at"`
}

// ViewingSnapshot is one viewing with the viewer identity redacted.
type ViewingSnapshot struct {
	ID               string `json:"id"`
	ViewerIDRedacted string `json:"viewer_id_redacted"`
	ScheduledAt      string `json:"scheduled_at"`
	Status           string `json:"status"`
}

// TimelineEntry is one reconciled audit event. EntryHash covers every other
// field of the entry; it is recomputed on every build, never stored.
type TimelineEntry struct {
	TS              string         `json:"ts"`
	ActorType       string         `json:"actor_type"`
	ActorIDRedacted string         `json:"actor_id_redacted"`
	Action          string         `json:"action"`
	Entity          string         `json:"entity"`
	EntityID        string         `json:"entity_id"`
	PayloadRedacted map[string]any `json:"payload_redacted"`
	SourceRefs      []string       `json:"source_refs"`
	EntryHash       string         `json:"entry_hash"`
}

// Integrity carries the pack's tamper-evidence. PackHash is computed over
// the whole pack with this field excluded - it cannot hash itself.
// TimelineHashChain is a rolling digest over entry hashes in final order,
// not a Merkle tree: reordering or mutating any entry changes it.
type Integrity struct {
	TimelineHashChain string         `json:"timeline_hash_chain"`
	PackHash          string         `json:"pack_hash"`
	RowCounts         map[string]int `json:"row_counts"`
}
