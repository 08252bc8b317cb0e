package importer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/status"
)

type fakeStore struct {
	accounts      []models.Account
	sellers       []models.Seller
	managers      []models.Manager
	relationships []models.Relationship
	snapshots     []models.Relationship
	revenues      []models.AccountRevenue

	upsertErr error
}

func (f *fakeStore) Upsert(ctx context.Context, tenantID string, account models.Account) (*models.Account, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.accounts = append(f.accounts, account)
	return &account, nil
}

type fakeSellerStore struct{ store *fakeStore }

func (f *fakeSellerStore) Upsert(ctx context.Context, tenantID string, seller models.Seller) (*models.Seller, error) {
	f.store.sellers = append(f.store.sellers, seller)
	return &seller, nil
}

type fakeManagerStore struct{ store *fakeStore }

func (f *fakeManagerStore) Upsert(ctx context.Context, tenantID string, mgr models.Manager) (*models.Manager, error) {
	f.store.managers = append(f.store.managers, mgr)
	return &mgr, nil
}

type fakeRelationshipStore struct{ store *fakeStore }

func (f *fakeRelationshipStore) Upsert(ctx context.Context, tenantID string, rel models.Relationship) (*models.Relationship, error) {
	f.store.relationships = append(f.store.relationships, rel)
	return &rel, nil
}

type fakeOriginalStore struct{ store *fakeStore }

func (f *fakeOriginalStore) Snapshot(ctx context.Context, tenantID string, rel models.Relationship) error {
	f.store.snapshots = append(f.store.snapshots, rel)
	return nil
}

type fakeRevenueStore struct{ store *fakeStore }

func (f *fakeRevenueStore) Upsert(ctx context.Context, tenantID string, rev models.AccountRevenue) error {
	f.store.revenues = append(f.store.revenues, rev)
	return nil
}

func newTestProcessor() (*Processor, *fakeStore) {
	store := &fakeStore{}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	p := NewProcessor(
		store,
		&fakeSellerStore{store},
		&fakeManagerStore{store},
		&fakeRelationshipStore{store},
		&fakeOriginalStore{store},
		&fakeRevenueStore{store},
		logger,
	)
	return p, store
}

func batch(rowType string, rows ...string) *kafka.IncomingMessage {
	raw := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		raw[i] = json.RawMessage(r)
	}
	return &kafka.IncomingMessage{
		Import: &kafka.ImportMessage{
			Type:     rowType,
			TenantID: "t1",
			BatchID:  "b1",
			Rows:     raw,
		},
	}
}

func TestProcessor_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply account rows", func(t *testing.T) {
		p, store := newTestProcessor()

		err := p.HandleMessage(ctx, batch(kafka.RowTypeAccount,
			`{"id":"a1","name":"Acme","current_division":"ESG"}`,
			`{"id":"a2","name":"Globex","current_division":"MIXED"}`,
		))

		require.NoError(t, err)
		require.Len(t, store.accounts, 2)
		assert.Equal(t, "Acme", store.accounts[0].Name)
		assert.Equal(t, models.DivisionMixed, store.accounts[1].CurrentDivision)
	})

	t.Run("should apply seller, manager, and revenue rows", func(t *testing.T) {
		p, store := newTestProcessor()

		require.NoError(t, p.HandleMessage(ctx, batch(kafka.RowTypeSeller, `{"id":"s1","name":"Jo","division":"GDT"}`)))
		require.NoError(t, p.HandleMessage(ctx, batch(kafka.RowTypeManager, `{"id":"m1","user_id":"u1","name":"Pat"}`)))
		require.NoError(t, p.HandleMessage(ctx, batch(kafka.RowTypeRevenue, `{"account_id":"a1","esg":100,"gdt":200}`)))

		assert.Len(t, store.sellers, 1)
		assert.Len(t, store.managers, 1)
		require.Len(t, store.revenues, 1)
		assert.Equal(t, 100.0, store.revenues[0].ESG)
	})

	t.Run("should upsert a relationship and snapshot the original", func(t *testing.T) {
		p, store := newTestProcessor()

		err := p.HandleMessage(ctx, batch(kafka.RowTypeRelationship,
			`{"seller_id":"s1","account_id":"a1","status":"pinned","pct_esg":50}`,
		))

		require.NoError(t, err)
		require.Len(t, store.relationships, 1)
		require.Len(t, store.snapshots, 1)

		rel := store.relationships[0]
		assert.Equal(t, "t1", rel.TenantID)
		// legacy vocabulary is stored as received and normalized on read
		assert.Equal(t, status.Pinned, rel.Status)
		require.NotNil(t, rel.PctESG)
		assert.Equal(t, 50.0, *rel.PctESG)
	})

	t.Run("should reject a relationship with an unknown status", func(t *testing.T) {
		p, store := newTestProcessor()

		err := p.HandleMessage(ctx, batch(kafka.RowTypeRelationship,
			`{"seller_id":"s1","account_id":"a1","status":"nonsense"}`,
		))

		require.Error(t, err)
		assert.Empty(t, store.relationships)
		assert.Empty(t, store.snapshots)
	})

	t.Run("should return an error on a malformed row for redelivery", func(t *testing.T) {
		p, store := newTestProcessor()

		err := p.HandleMessage(ctx, batch(kafka.RowTypeAccount, `not json`))

		require.Error(t, err)
		assert.Empty(t, store.accounts)
	})

	t.Run("should stop the batch on the first failing row", func(t *testing.T) {
		p, store := newTestProcessor()

		err := p.HandleMessage(ctx, batch(kafka.RowTypeAccount,
			`{"id":"a1","name":"Acme"}`,
			`not json`,
			`{"id":"a2","name":"Globex"}`,
		))

		require.Error(t, err)
		assert.Len(t, store.accounts, 1)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		p, store := newTestProcessor()
		store.upsertErr = errors.New("db down")

		err := p.HandleMessage(ctx, batch(kafka.RowTypeAccount, `{"id":"a1"}`))

		assert.Error(t, err)
	})

	t.Run("should reject a message that is not an import batch", func(t *testing.T) {
		p, _ := newTestProcessor()

		err := p.HandleMessage(ctx, &kafka.IncomingMessage{Value: []byte(`{}`)})

		assert.Error(t, err)
	})
}
