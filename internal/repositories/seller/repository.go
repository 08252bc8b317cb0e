package seller

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

const sellerColumns = "id, tenant_id, manager_id, name, division, size, industry_specialty, city, state, country, tenure_months, finalized, created_at, updated_at, deleted_at"

// Repository handles seller persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new seller repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a seller by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Seller, error) {
	ctx, span := tracing.StartSpan(ctx, "seller.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(sellerColumns)
	sb.From("sellers")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var seller models.Seller
	if err := r.db.GetContext(ctx, &seller, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "seller %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get seller")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get seller")
	}

	return &seller, nil
}

// List retrieves sellers with filtering and pagination
func (r *Repository) List(ctx context.Context, tenantID string, filter models.SellerFilter) (*models.SellerListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "seller.Repository.List")
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
	countSb.From("sellers")
	countSb.Where(r.filterConditions(countSb, tenantID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to count sellers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count sellers")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(sellerColumns)
	sb.From("sellers")
	sb.Where(r.filterConditions(sb, tenantID, filter)...)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var sellers []models.Seller
	if err := r.db.SelectContext(ctx, &sellers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to list sellers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list sellers")
	}

	return &models.SellerListResponse{
		Items:      sellers,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// ListIDsByManager returns the IDs of every seller owned by a manager. Used
// for manager-scope checks.
func (r *Repository) ListIDsByManager(ctx context.Context, tenantID, managerID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "seller.Repository.ListIDsByManager")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("sellers")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("manager_id", managerID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "manager_id": managerID}).Error("Failed to list seller IDs by manager")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list sellers")
	}
	return ids, nil
}

// SetFinalized marks or clears the seller's book as finalized.
func (r *Repository) SetFinalized(ctx context.Context, tenantID, id string, finalized bool) error {
	ctx, span := tracing.StartSpan(ctx, "seller.Repository.SetFinalized")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("sellers")
	sb.Set(sb.Assign("finalized", finalized), sb.Assign("updated_at", time.Now().UTC()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID, "finalized": finalized}).Error("Failed to set seller finalized flag")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update seller")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "seller %s not found", id)
	}
	return nil
}

// Upsert creates or refreshes a seller from the import feed.
func (r *Repository) Upsert(ctx context.Context, tenantID string, seller models.Seller) (*models.Seller, error) {
	ctx, span := tracing.StartSpan(ctx, "seller.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}

	query := `
		INSERT INTO sellers (
			id, tenant_id, manager_id, name, division, size, industry_specialty,
			city, state, country, tenure_months, finalized, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id)
		DO UPDATE SET
			manager_id = EXCLUDED.manager_id,
			name = EXCLUDED.name,
			division = EXCLUDED.division,
			size = EXCLUDED.size,
			industry_specialty = EXCLUDED.industry_specialty,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			tenure_months = EXCLUDED.tenure_months,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING ` + sellerColumns

	var saved models.Seller
	err := r.db.GetContext(ctx, &saved, query,
		seller.ID, tenantID, seller.ManagerID, seller.Name, seller.Division, seller.Size, seller.IndustrySpecialty,
		seller.City, seller.State, seller.Country, seller.TenureMonths, seller.Finalized, now, now,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": seller.ID, "tenant_id": tenantID}).Error("Failed to upsert seller")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert seller")
	}
	return &saved, nil
}

func (r *Repository) filterConditions(sb *sqlbuilder.SelectBuilder, tenantID string, filter models.SellerFilter) []string {
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if filter.ManagerID != "" {
		where = append(where, sb.Equal("manager_id", filter.ManagerID))
	}
	if filter.Division != "" {
		where = append(where, sb.Equal("division", string(filter.Division)))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("name", "%"+filter.Search+"%"))
	}
	return where
}
