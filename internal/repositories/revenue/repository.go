package revenue

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Repository handles account revenue persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new revenue repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or refreshes an account's revenue row from the import feed.
func (r *Repository) Upsert(ctx context.Context, tenantID string, rev models.AccountRevenue) error {
	ctx, span := tracing.StartSpan(ctx, "revenue.Repository.Upsert")
	defer span.End()

	query := `
		INSERT INTO account_revenues (account_id, tenant_id, esg, gdt, gvc, msg_us, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, account_id)
		DO UPDATE SET
			esg = EXCLUDED.esg,
			gdt = EXCLUDED.gdt,
			gvc = EXCLUDED.gvc,
			msg_us = EXCLUDED.msg_us,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, rev.AccountID, tenantID, rev.ESG, rev.GDT, rev.GVC, rev.MSGUS, time.Now().UTC())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "account_id": rev.AccountID}).Error("Failed to upsert account revenue")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert account revenue")
	}
	return nil
}

// CompanyTotal sums revenue across every account in the tenant.
func (r *Repository) CompanyTotal(ctx context.Context, tenantID string) (float64, error) {
	ctx, span := tracing.StartSpan(ctx, "revenue.Repository.CompanyTotal")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COALESCE(SUM(esg + gdt + gvc + msg_us), 0)")
	sb.From("account_revenues")
	sb.Where(sb.Equal("tenant_id", tenantID))

	query, args := sb.Build()
	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to sum company revenue")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to sum company revenue")
	}
	return total, nil
}
