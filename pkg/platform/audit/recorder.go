package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dossier/pkg/requestcontext"
)

// StoreRecorder records synchronously into a single store. Used by tests and
// by tools that need the append confirmed before returning; servers wire the
// async Publisher instead.
type StoreRecorder struct {
	store Store
}

// NewStoreRecorder creates a synchronous recorder over one store.
func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store}
}

// Record fills defaults from context and appends, surfacing the store error.
func (r *StoreRecorder) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := r.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
