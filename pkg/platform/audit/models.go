// Package audit captures structured audit events emitted from domain logic.
// Events are transport-agnostic so stores and sinks can fan out: the same
// event lands in the postgres event log (where future evidence packs will
// read it back into a timeline) and on the Kafka audit topic.
package audit

import (
	"context"
	"time"
)

// Event is one recorded action. Payload is semi-structured and must already
// be safe to persist - callers redact before emitting.
type Event struct {
	ID        string
	Timestamp time.Time
	ActorType string
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	Payload   map[string]any
	RequestID string
}

// Well-known actions.
const (
	ActionEvidenceGenerated = "evidence_pack_generated"
	ActionEvidenceVerified  = "evidence_pack_verified"
	ActionAccessDenied      = "evidence_access_denied"
)

// Store persists audit events, append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Recorder is the port domain services emit through. Implementations decide
// delivery semantics; the evidence assembler treats recording as
// fire-and-forget and never fails a build on a recording error.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
