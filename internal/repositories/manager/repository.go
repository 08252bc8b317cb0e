package manager

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

const managerColumns = "id, tenant_id, user_id, name, email, created_at, updated_at, deleted_at"

// Repository handles manager persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new manager repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a manager by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Manager, error) {
	ctx, span := tracing.StartSpan(ctx, "manager.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(managerColumns)
	sb.From("managers")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var mgr models.Manager
	if err := r.db.GetContext(ctx, &mgr, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "manager %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get manager")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get manager")
	}
	return &mgr, nil
}

// GetByUser retrieves the manager linked to a user profile, or nil when the
// user has no manager record. The link is 1:1.
func (r *Repository) GetByUser(ctx context.Context, tenantID, userID string) (*models.Manager, error) {
	ctx, span := tracing.StartSpan(ctx, "manager.Repository.GetByUser")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(managerColumns)
	sb.From("managers")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("user_id", userID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var mgr models.Manager
	if err := r.db.GetContext(ctx, &mgr, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "user_id": userID}).Error("Failed to get manager by user")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get manager")
	}
	return &mgr, nil
}

// List retrieves all managers in the tenant.
func (r *Repository) List(ctx context.Context, tenantID string) ([]models.Manager, error) {
	ctx, span := tracing.StartSpan(ctx, "manager.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(managerColumns)
	sb.From("managers")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	var managers []models.Manager
	if err := r.db.SelectContext(ctx, &managers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to list managers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list managers")
	}
	return managers, nil
}

// Upsert creates or refreshes a manager from the import feed.
func (r *Repository) Upsert(ctx context.Context, tenantID string, mgr models.Manager) (*models.Manager, error) {
	ctx, span := tracing.StartSpan(ctx, "manager.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if mgr.ID == "" {
		mgr.ID = uuid.New().String()
	}

	query := `
		INSERT INTO managers (id, tenant_id, user_id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, user_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING ` + managerColumns

	var saved models.Manager
	err := r.db.GetContext(ctx, &saved, query, mgr.ID, tenantID, mgr.UserID, mgr.Name, mgr.Email, now, now)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "user_id": mgr.UserID}).Error("Failed to upsert manager")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert manager")
	}
	return &saved, nil
}
