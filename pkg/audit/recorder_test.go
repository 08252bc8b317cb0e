package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

type fakeStore struct {
	entries []models.AuditLogEntry
	err     error
}

func (f *fakeStore) Append(ctx context.Context, entry models.AuditLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist the entry with JSON snapshots", func(t *testing.T) {
		store := &fakeStore{}
		recorder := NewRecorder(store, testLogger())

		before := map[string]string{"status": "must_keep"}
		after := map[string]string{"status": "to_be_peeled"}
		recorder.Record(ctx, "t1", "u1", "relationship.status_changed", "relationship", "r1", before, after)

		require.Len(t, store.entries, 1)
		entry := store.entries[0]
		assert.Equal(t, "t1", entry.TenantID)
		assert.Equal(t, "u1", entry.UserID)
		assert.Equal(t, "relationship.status_changed", entry.Action)
		assert.Equal(t, "relationship", entry.Entity)
		assert.Equal(t, "r1", entry.EntityID)
		assert.JSONEq(t, `{"status":"must_keep"}`, string(entry.Before))
		assert.JSONEq(t, `{"status":"to_be_peeled"}`, string(entry.After))
	})

	t.Run("should leave nil snapshots empty", func(t *testing.T) {
		store := &fakeStore{}
		recorder := NewRecorder(store, testLogger())

		recorder.Record(ctx, "t1", "u1", "relationship.created", "relationship", "r1", nil, map[string]string{"id": "r1"})

		require.Len(t, store.entries, 1)
		assert.Nil(t, store.entries[0].Before)
		assert.NotNil(t, store.entries[0].After)
	})

	t.Run("should swallow store failures", func(t *testing.T) {
		store := &fakeStore{err: errors.New("db down")}
		recorder := NewRecorder(store, testLogger())

		assert.NotPanics(t, func() {
			recorder.Record(ctx, "t1", "u1", "relationship.removed", "relationship", "r1", nil, nil)
		})
	})
}
