// Package postgres persists audit events into the primary audit_events
// table - the same table the evidence resolver reads, so every generated
// pack shows up in the timeline of the next one.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	audit "dossier/pkg/platform/audit"
)

// Store implements audit.Store over PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one audit event. Events about a listing carry the listing
// foreign key so timeline queries match them without payload inspection.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
	}

	var listingID sql.NullString
	if event.Entity == "listing" && event.EntityID != "" {
		listingID = sql.NullString{String: event.EntityID, Valid: true}
	}

	query := `
		INSERT INTO audit_events (
			id, listing_id, actor_type, actor_id, action,
			entity, entity_id, payload, source_ref, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		listingID,
		event.ActorType,
		event.ActorID,
		event.Action,
		event.Entity,
		event.EntityID,
		payload,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
