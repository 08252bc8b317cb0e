package relationship

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/models"
)

const originalColumns = "id, tenant_id, seller_id, account_id, status, pct_esg, pct_gdt, pct_gvc, pct_msg_us, imported_at"

// OriginalRepository handles the immutable import-time snapshot. It exposes
// insert and read only; the snapshot has no update or delete path.
type OriginalRepository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewOriginalRepository creates a new original relationship repository
func NewOriginalRepository(db database.DB, logger ectologger.Logger) *OriginalRepository {
	return &OriginalRepository{
		db:     db,
		logger: logger,
	}
}

// Snapshot records a relationship as it stood at import time. A pair is
// snapshotted at most once; replays of the import feed are no-ops.
func (r *OriginalRepository) Snapshot(ctx context.Context, tenantID string, rel models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.OriginalRepository.Snapshot")
	defer span.End()

	query := `
		INSERT INTO original_relationships (
			id, tenant_id, seller_id, account_id, status,
			pct_esg, pct_gdt, pct_gvc, pct_msg_us, imported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, seller_id, account_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(), tenantID, rel.SellerID, rel.AccountID, string(rel.Status),
		rel.PctESG, rel.PctGDT, rel.PctGVC, rel.PctMSGUS, time.Now().UTC(),
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": rel.SellerID, "account_id": rel.AccountID}).Error("Failed to snapshot original relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to snapshot relationship")
	}
	return nil
}

// ListBySeller retrieves a seller's original snapshot joined with account and
// revenue data, shaped like the live book listing.
func (r *OriginalRepository) ListBySeller(ctx context.Context, tenantID, sellerID string) ([]models.RelationshipRow, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.OriginalRepository.ListBySeller")
	defer span.End()

	query := `
		SELECT o.id, o.tenant_id, o.seller_id, o.account_id, o.status,
		       o.pct_esg, o.pct_gdt, o.pct_gvc, o.pct_msg_us, o.imported_at AS created_at, o.imported_at AS updated_at,
		       a.name AS account_name, a.current_division AS account_division,
		       COALESCE(ar.esg, 0) AS revenue_esg, COALESCE(ar.gdt, 0) AS revenue_gdt,
		       COALESCE(ar.gvc, 0) AS revenue_gvc, COALESCE(ar.msg_us, 0) AS revenue_msg_us
		FROM original_relationships o
		JOIN accounts a ON a.id = o.account_id AND a.tenant_id = o.tenant_id
		LEFT JOIN account_revenues ar ON ar.account_id = o.account_id AND ar.tenant_id = o.tenant_id
		WHERE o.tenant_id = $1 AND o.seller_id = $2
		ORDER BY a.name
	`

	var rows []models.RelationshipRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, sellerID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": sellerID}).Error("Failed to list original relationships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list original relationships")
	}
	return rows, nil
}

// IsOriginalOnly reports whether the snapshot is the only thing backing the
// account for this seller. Such accounts can change status but can never be
// unassigned.
func (r *OriginalRepository) IsOriginalOnly(ctx context.Context, tenantID, sellerID, accountID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.OriginalRepository.IsOriginalOnly")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("original_relationships")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("seller_id", sellerID),
		sb.Equal("account_id", accountID),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": sellerID, "account_id": accountID}).Error("Failed to check original relationship")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check original relationship")
	}
	return count > 0, nil
}
