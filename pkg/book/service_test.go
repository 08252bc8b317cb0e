package book

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/status"
)

func row(accountID string, st status.Status, pctESG *float64, esg, gdt float64) models.RelationshipRow {
	return models.RelationshipRow{
		Relationship: models.Relationship{
			ID:        "rel-" + accountID,
			TenantID:  "t1",
			SellerID:  "s1",
			AccountID: accountID,
			Status:    st,
			PctESG:    pctESG,
		},
		RevenueESG: esg,
		RevenueGDT: gdt,
	}
}

func pct(v float64) *float64 {
	return &v
}

func TestComputeKPIs(t *testing.T) {
	t.Run("should aggregate book, full, and original values", func(t *testing.T) {
		rows := []models.RelationshipRow{
			row("a1", status.MustKeep, pct(50), 1000, 0), // weighted 500, full 1000
			row("a2", status.ForDiscussion, nil, 200, 300),
		}
		originals := []models.RelationshipRow{
			row("a1", status.MustKeep, nil, 1000, 0),
		}

		kpis := ComputeKPIs(rows, originals)

		assert.Equal(t, 1000.0, kpis.BookValue)
		assert.Equal(t, 1500.0, kpis.FullValue)
		assert.Equal(t, 1000.0, kpis.OriginalValue)
		assert.Equal(t, 2, kpis.AccountCount)
		assert.Equal(t, 1, kpis.MustKeepCount)
	})

	t.Run("should count legacy pinned rows as must keep", func(t *testing.T) {
		rows := []models.RelationshipRow{
			row("a1", status.Pinned, nil, 0, 0),
			row("a2", status.ApprovalForPinning, nil, 0, 0),
			row("a3", status.Assigned, nil, 0, 0),
		}

		kpis := ComputeKPIs(rows, nil)

		assert.Equal(t, 3, kpis.AccountCount)
		assert.Equal(t, 2, kpis.MustKeepCount)
	})

	t.Run("should return zero KPIs for an empty book", func(t *testing.T) {
		kpis := ComputeKPIs(nil, nil)

		assert.Zero(t, kpis.BookValue)
		assert.Zero(t, kpis.FullValue)
		assert.Zero(t, kpis.OriginalValue)
		assert.Zero(t, kpis.AccountCount)
		assert.Zero(t, kpis.MustKeepCount)
	})
}

type fakeRevenues struct {
	total float64
	err   error
}

func (f *fakeRevenues) CompanyTotal(ctx context.Context, tenantID string) (float64, error) {
	return f.total, f.err
}

func TestService_GetCompanyKPIs(t *testing.T) {
	ctx := context.Background()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	t.Run("should return the tenant-wide revenue total", func(t *testing.T) {
		svc := NewService(nil, nil, nil, &fakeRevenues{total: 2_500_000}, nil, logger)

		kpis, err := svc.GetCompanyKPIs(ctx, "t1")

		require.NoError(t, err)
		assert.Equal(t, 2_500_000.0, kpis.TotalRevenue)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		svc := NewService(nil, nil, nil, &fakeRevenues{err: errors.New("db down")}, nil, logger)

		_, err := svc.GetCompanyKPIs(ctx, "t1")

		assert.Error(t, err)
	})
}
