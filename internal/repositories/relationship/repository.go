package relationship

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/status"
)

const relationshipColumns = "id, tenant_id, seller_id, account_id, status, pct_esg, pct_gdt, pct_gvc, pct_msg_us, created_at, updated_at"

// Repository handles relationship persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new relationship repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a relationship by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(relationshipColumns)
	sb.From("relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var rel models.Relationship
	if err := r.db.GetContext(ctx, &rel, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "relationship %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get relationship")
	}
	return &rel, nil
}

// ListBySeller retrieves a seller's relationships joined with account data and
// revenue figures.
func (r *Repository) ListBySeller(ctx context.Context, tenantID, sellerID string) ([]models.RelationshipRow, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.ListBySeller")
	defer span.End()

	query := `
		SELECT r.id, r.tenant_id, r.seller_id, r.account_id, r.status,
		       r.pct_esg, r.pct_gdt, r.pct_gvc, r.pct_msg_us, r.created_at, r.updated_at,
		       a.name AS account_name, a.current_division AS account_division,
		       COALESCE(ar.esg, 0) AS revenue_esg, COALESCE(ar.gdt, 0) AS revenue_gdt,
		       COALESCE(ar.gvc, 0) AS revenue_gvc, COALESCE(ar.msg_us, 0) AS revenue_msg_us
		FROM relationships r
		JOIN accounts a ON a.id = r.account_id AND a.tenant_id = r.tenant_id
		LEFT JOIN account_revenues ar ON ar.account_id = r.account_id AND ar.tenant_id = r.tenant_id
		WHERE r.tenant_id = $1 AND r.seller_id = $2
		ORDER BY a.name
	`

	var rows []models.RelationshipRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, sellerID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": sellerID}).Error("Failed to list relationships by seller")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list relationships")
	}
	return rows, nil
}

// FindProtector returns the seller currently protecting an account, or empty
// when the account is unprotected. Legacy status vocabulary counts.
func (r *Repository) FindProtector(ctx context.Context, tenantID, accountID string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.FindProtector")
	defer span.End()

	protected := status.ProtectedStored()
	stored := make([]string, 0, len(protected))
	for _, s := range protected {
		stored = append(stored, string(s))
	}

	query := `
		SELECT seller_id FROM relationships
		WHERE tenant_id = $1 AND account_id = $2 AND status = ANY($3)
		LIMIT 1
	`

	var sellerID string
	if err := r.db.GetContext(ctx, &sellerID, query, tenantID, accountID, pq.Array(stored)); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "account_id": accountID}).Error("Failed to find protecting seller")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to check account protection")
	}
	return sellerID, nil
}

// Create inserts a relationship at a target status. Duplicate pairs are
// rejected as an integrity error.
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	rel := models.Relationship{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		SellerID:  req.SellerID,
		AccountID: req.AccountID,
		Status:    req.Status,
		PctESG:    req.PctESG,
		PctGDT:    req.PctGDT,
		PctGVC:    req.PctGVC,
		PctMSGUS:  req.PctMSGUS,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("relationships")
	sb.Cols("id", "tenant_id", "seller_id", "account_id", "status", "pct_esg", "pct_gdt", "pct_gvc", "pct_msg_us", "created_at", "updated_at")
	sb.Values(rel.ID, rel.TenantID, rel.SellerID, rel.AccountID, string(rel.Status), rel.PctESG, rel.PctGDT, rel.PctGVC, rel.PctMSGUS, rel.CreatedAt, rel.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, httperror.NewHTTPError(http.StatusConflict, "relationship already exists for this seller and account")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": req.SellerID, "account_id": req.AccountID}).Error("Failed to create relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create relationship")
	}
	return &rel, nil
}

// UpdateStatus mutates the relationship row's status in place and returns the
// updated row. Last write wins; there is no concurrency token.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id string, to status.Status) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.UpdateStatus")
	defer span.End()

	query := `
		UPDATE relationships
		SET status = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4
		RETURNING ` + relationshipColumns

	var rel models.Relationship
	if err := r.db.GetContext(ctx, &rel, query, string(to), time.Now().UTC(), id, tenantID); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "relationship %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID, "status": to}).Error("Failed to update relationship status")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update relationship")
	}
	return &rel, nil
}

// Delete removes a relationship row. Original snapshots are untouched; the
// caller enforces the immutable-account rule before deleting.
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("relationships")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to delete relationship")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete relationship")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "relationship %s not found", id)
	}
	return nil
}

// Upsert creates the relationship for a pair or refreshes its status and
// weights. Used by the importer.
func (r *Repository) Upsert(ctx context.Context, tenantID string, rel models.Relationship) (*models.Relationship, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	query := `
		INSERT INTO relationships (
			id, tenant_id, seller_id, account_id, status,
			pct_esg, pct_gdt, pct_gvc, pct_msg_us, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tenant_id, seller_id, account_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			pct_esg = EXCLUDED.pct_esg,
			pct_gdt = EXCLUDED.pct_gdt,
			pct_gvc = EXCLUDED.pct_gvc,
			pct_msg_us = EXCLUDED.pct_msg_us,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + relationshipColumns

	var saved models.Relationship
	err := r.db.GetContext(ctx, &saved, query,
		rel.ID, tenantID, rel.SellerID, rel.AccountID, string(rel.Status),
		rel.PctESG, rel.PctGDT, rel.PctGVC, rel.PctMSGUS, now, now,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "seller_id": rel.SellerID, "account_id": rel.AccountID}).Error("Failed to upsert relationship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert relationship")
	}
	return &saved, nil
}
