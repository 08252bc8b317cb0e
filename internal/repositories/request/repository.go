package request

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

const requestColumns = "id, tenant_id, requested_by, seller_id, account_id, relationship_id, action, target_status, status, reason, resolved_by, resolved_at, created_at, updated_at"

// Repository handles approval request persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new request repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a request by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "request.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(requestColumns)
	sb.From("requests")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "request %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get request")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get request")
	}
	return &req, nil
}

// List retrieves requests filtered by status with pagination.
func (r *Repository) List(ctx context.Context, tenantID, requestStatus string, page, pageSize int) (*models.RequestListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "request.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("requests")
	countWhere := []string{countSb.Equal("tenant_id", tenantID)}
	if requestStatus != "" {
		countWhere = append(countWhere, countSb.Equal("status", requestStatus))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "status": requestStatus}).Error("Failed to count requests")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count requests")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(requestColumns)
	sb.From("requests")
	where := []string{sb.Equal("tenant_id", tenantID)}
	if requestStatus != "" {
		where = append(where, sb.Equal("status", requestStatus))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "status": requestStatus}).Error("Failed to list requests")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list requests")
	}

	return &models.RequestListResponse{
		Items:      requests,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Create inserts a pending request.
func (r *Repository) Create(ctx context.Context, req models.Request) (*models.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "request.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	req.ID = uuid.New().String()
	req.Status = models.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("requests")
	sb.Cols("id", "tenant_id", "requested_by", "seller_id", "account_id", "relationship_id", "action", "target_status", "status", "reason", "created_at", "updated_at")
	sb.Values(req.ID, req.TenantID, req.RequestedBy, req.SellerID, req.AccountID, req.RelationshipID, string(req.Action), string(req.TargetStatus), req.Status, req.Reason, req.CreatedAt, req.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": req.TenantID, "seller_id": req.SellerID, "account_id": req.AccountID}).Error("Failed to create request")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create request")
	}
	return &req, nil
}

// Resolve marks a pending request approved or rejected. Resolving an already
// resolved request is rejected so two reviewers cannot double-apply it.
func (r *Repository) Resolve(ctx context.Context, tenantID, id, resolution, resolvedBy string) (*models.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "request.Repository.Resolve")
	defer span.End()

	query := `
		UPDATE requests
		SET status = $1, resolved_by = $2, resolved_at = $3, updated_at = $3
		WHERE id = $4 AND tenant_id = $5 AND status = 'pending'
		RETURNING ` + requestColumns

	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, resolution, resolvedBy, time.Now().UTC(), id, tenantID); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "request %s is not pending", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID, "resolution": resolution}).Error("Failed to resolve request")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve request")
	}
	return &req, nil
}

// MarkApplyFailed moves a just-approved request to rejected when the held
// change no longer applies, recording why. Guarded on approved so it never
// touches pending or already terminal requests.
func (r *Repository) MarkApplyFailed(ctx context.Context, tenantID, id, reason string) (*models.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "request.Repository.MarkApplyFailed")
	defer span.End()

	query := `
		UPDATE requests
		SET status = $1, reason = $2, updated_at = $3
		WHERE id = $4 AND tenant_id = $5 AND status = $6
		RETURNING ` + requestColumns

	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, models.RequestStatusRejected, reason, time.Now().UTC(), id, tenantID, models.RequestStatusApproved); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "request %s is not approved", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to mark request apply failure")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark request apply failure")
	}
	return &req, nil
}
