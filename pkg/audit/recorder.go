// Package audit records user-visible mutations as an append-only trail.
package audit

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Store is the persistence the recorder writes through.
type Store interface {
	Append(ctx context.Context, entry models.AuditLogEntry) error
}

// Recorder writes audit entries best-effort: persistence failures are logged
// and swallowed so the audited operation itself never fails on audit.
type Recorder struct {
	store  Store
	logger ectologger.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(store Store, logger ectologger.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

// Record writes an audit entry for a mutation. Before and after are snapshots
// of the entity; either may be nil (creates have no before, deletes no after).
func (r *Recorder) Record(ctx context.Context, tenantID, userID, action, entity, entityID string, before, after any) {
	ctx, span := tracing.StartSpan(ctx, "audit.Recorder.Record")
	defer span.End()

	entry := models.AuditLogEntry{
		TenantID: tenantID,
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Before:   marshalSnapshot(before),
		After:    marshalSnapshot(after),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"action":    action,
			"entity":    entity,
			"entity_id": entityID,
		}).Warn("Failed to record audit entry")
	}
}

func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
