package auditlog

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

const auditColumns = "id, tenant_id, user_id, action, entity, entity_id, before, after, created_at"

// Repository handles the append-only audit trail. There is no update or
// delete; rows are written once and read many times.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new audit log repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Append writes a single audit entry.
func (r *Repository) Append(ctx context.Context, entry models.AuditLogEntry) error {
	ctx, span := tracing.StartSpan(ctx, "auditlog.Repository.Append")
	defer span.End()

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("audit_logs")
	sb.Cols("id", "tenant_id", "user_id", "action", "entity", "entity_id", "before", "after", "created_at")
	sb.Values(entry.ID, entry.TenantID, entry.UserID, entry.Action, entry.Entity, entry.EntityID, []byte(entry.Before), []byte(entry.After), entry.CreatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": entry.TenantID, "entity": entry.Entity, "entity_id": entry.EntityID}).Error("Failed to append audit log entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to append audit log entry")
	}
	return nil
}

// List retrieves audit entries with filtering and pagination, newest first.
func (r *Repository) List(ctx context.Context, tenantID string, filter models.AuditLogFilter) (*models.AuditLogListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "auditlog.Repository.List")
	defer span.End()

	page := filter.Page
	pageSize := filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("audit_logs")
	countSb.Where(r.filterConditions(countSb, tenantID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to count audit log entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count audit log entries")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(auditColumns)
	sb.From("audit_logs")
	sb.Where(r.filterConditions(sb, tenantID, filter)...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var entries []models.AuditLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to list audit log entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list audit log entries")
	}

	return &models.AuditLogListResponse{
		Items:      entries,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (r *Repository) filterConditions(sb *sqlbuilder.SelectBuilder, tenantID string, filter models.AuditLogFilter) []string {
	where := []string{sb.Equal("tenant_id", tenantID)}
	if filter.Entity != "" {
		where = append(where, sb.Equal("entity", filter.Entity))
	}
	if filter.EntityID != "" {
		where = append(where, sb.Equal("entity_id", filter.EntityID))
	}
	if filter.UserID != "" {
		where = append(where, sb.Equal("user_id", filter.UserID))
	}
	return where
}
