package service

import (
	"sort"
	"strings"

	"dossier/internal/evidence/canonical"
	"dossier/internal/evidence/models"
	"dossier/internal/evidence/redact"
	mkt "dossier/internal/marketplace/models"
)

// buildTimeline reconciles the raw events from both logs into one redacted,
// hashed, chronologically sorted timeline and returns it with its rolling
// chain digest. Equal timestamps tie-break on entity id, then action, so the
// final order is a pure function of the rows.
func buildTimeline(events []mkt.AuditEvent) ([]models.TimelineEntry, string, error) {
	entries := make([]models.TimelineEntry, 0, len(events))
	for _, e := range events {
		entry := toTimelineEntry(e)
		hash, err := entryHash(entry)
		if err != nil {
			return nil, "", err
		}
		entry.EntryHash = hash
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TS != entries[j].TS {
			return entries[i].TS < entries[j].TS
		}
		if entries[i].EntityID != entries[j].EntityID {
			return entries[i].EntityID < entries[j].EntityID
		}
		return entries[i].Action < entries[j].Action
	})

	var concat strings.Builder
	for _, entry := range entries {
		concat.WriteString(entry.EntryHash)
	}
	return entries, canonical.Digest(concat.String()), nil
}

func toTimelineEntry(e mkt.AuditEvent) models.TimelineEntry {
	entityID := e.EntityID
	if entityID == "" {
		entityID = e.ID
	}
	sourceRefs := []string{}
	if e.SourceRef != "" {
		sourceRefs = append(sourceRefs, e.SourceRef)
	}
	return models.TimelineEntry{
		TS:              e.CreatedAt.UTC().Format(timestampLayout),
		ActorType:       e.ActorType,
		ActorIDRedacted: redact.ID(e.ActorID),
		Action:          e.Action,
		Entity:          e.Entity,
		EntityID:        entityID,
		PayloadRedacted: redact.Payload(e.Payload),
		SourceRefs:      sourceRefs,
	}
}

// entryHash digests every entry field except the hash itself.
func entryHash(e models.TimelineEntry) (string, error) {
	return canonical.HashValue(map[string]any{
		"ts":                e.TS,
		"actor_type":        e.ActorType,
		"actor_id_redacted": e.ActorIDRedacted,
		"action":            e.Action,
		"entity":            e.Entity,
		"entity_id":         e.EntityID,
		"payload_redacted":  e.PayloadRedacted,
		"source_refs":       e.SourceRefs,
	})
}
