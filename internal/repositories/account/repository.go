package account

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/scoring"
	"github.com/Ramsey-B/sage/pkg/status"
)

const accountColumns = "id, tenant_id, name, city, state, country, lat, lng, industry, size, tier, current_division, created_at, updated_at, deleted_at"

// Repository handles account persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new account repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves an account by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(accountColumns)
	sb.From("accounts")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "account %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to get account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get account")
	}

	return &account, nil
}

// List retrieves accounts with filtering, sorting, and pagination. When the
// filter carries a seller, the query also computes the fit score for that
// seller in SQL (same point values as pkg/scoring) and excludes accounts
// protected by any other seller, so candidate listing never does a
// client-side cross product.
func (r *Repository) List(ctx context.Context, tenantID string, filter models.AccountFilter, seller *models.Seller) (*models.AccountListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.List")
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
	countSb.From("accounts a")
	countSb.Where(r.filterConditions(countSb, tenantID, filter, seller)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID}).Error("Failed to count accounts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count accounts")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	columns := []string{
		"a.id", "a.tenant_id", "a.name", "a.city", "a.state", "a.country", "a.lat", "a.lng",
		"a.industry", "a.size", "a.tier", "a.current_division", "a.created_at", "a.updated_at", "a.deleted_at",
		"COALESCE(ar.esg + ar.gdt + ar.gvc + ar.msg_us, 0) AS total_revenue",
		r.protectedBySellerExpr(sb),
	}
	if seller != nil {
		columns = append(columns, r.fitScoreExpr(sb, seller))
	} else {
		columns = append(columns, "NULL::int AS fit_score")
	}
	sb.Select(columns...)
	sb.From("accounts a")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "account_revenues ar", "ar.account_id = a.id AND ar.tenant_id = a.tenant_id")
	sb.Where(r.filterConditions(sb, tenantID, filter, seller)...)
	sb.OrderBy(r.orderBy(filter, seller))
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rows []models.AccountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "filter": fmt.Sprintf("%+v", filter)}).Error("Failed to list accounts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list accounts")
	}

	return &models.AccountListResponse{
		Items:      rows,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateDivision updates the account's current division tag, the only mutable
// attribute on imported accounts.
func (r *Repository) UpdateDivision(ctx context.Context, tenantID, id string, division models.Division) error {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.UpdateDivision")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("accounts")
	sb.Set(sb.Assign("current_division", string(division)), sb.Assign("updated_at", time.Now().UTC()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id, "tenant_id": tenantID}).Error("Failed to update account division")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update account")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "account %s not found", id)
	}
	return nil
}

// Upsert creates or refreshes an account from the import feed.
func (r *Repository) Upsert(ctx context.Context, tenantID string, account models.Account) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	query := `
		INSERT INTO accounts (
			id, tenant_id, name, city, state, country, lat, lng,
			industry, size, tier, current_division, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			industry = EXCLUDED.industry,
			size = EXCLUDED.size,
			tier = EXCLUDED.tier,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING ` + accountColumns

	var saved models.Account
	err := r.db.GetContext(ctx, &saved, query,
		account.ID, tenantID, account.Name, account.City, account.State, account.Country, account.Lat, account.Lng,
		account.Industry, account.Size, account.Tier, account.CurrentDivision, now, now,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": account.ID, "tenant_id": tenantID}).Error("Failed to upsert account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert account")
	}
	return &saved, nil
}

func (r *Repository) filterConditions(sb *sqlbuilder.SelectBuilder, tenantID string, filter models.AccountFilter, seller *models.Seller) []string {
	where := []string{
		sb.Equal("a.tenant_id", tenantID),
		sb.IsNull("a.deleted_at"),
	}
	if filter.Division != "" {
		where = append(where, sb.Equal("a.current_division", string(filter.Division)))
	}
	if filter.Size != "" {
		where = append(where, sb.Equal("a.size", string(filter.Size)))
	}
	if filter.Tier != "" {
		where = append(where, sb.Equal("a.tier", filter.Tier))
	}
	if filter.Industry != "" {
		where = append(where, fmt.Sprintf("LOWER(a.industry) = LOWER(%s)", sb.Var(filter.Industry)))
	}
	if filter.Country != "" {
		where = append(where, fmt.Sprintf("LOWER(a.country) = LOWER(%s)", sb.Var(filter.Country)))
	}
	if filter.State != "" {
		where = append(where, fmt.Sprintf("LOWER(a.state) = LOWER(%s)", sb.Var(filter.State)))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("a.name", "%"+filter.Search+"%"))
	}
	if seller != nil {
		// Candidate mode: hide accounts held in another seller's book.
		where = append(where, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM relationships pr WHERE pr.tenant_id = a.tenant_id AND pr.account_id = a.id AND pr.seller_id <> %s AND pr.status IN (%s))",
			sb.Var(seller.ID), r.protectedList(sb),
		))
	}
	return where
}

// fitScoreExpr mirrors pkg/scoring criterion for criterion so paginated SQL
// and on-demand Go scoring agree. Seller-side inputs are normalized in Go
// with scoring.Normalized; account-side columns are normalized in SQL, with
// empty strings treated as absent exactly like NULL.
func (r *Repository) fitScoreExpr(sb *sqlbuilder.SelectBuilder, seller *models.Seller) string {
	parts := make([]string, 0, 4)

	if seller.Division != "" {
		parts = append(parts, fmt.Sprintf(
			"CASE WHEN a.current_division = 'MIXED' OR a.current_division = %s THEN 25 ELSE 0 END",
			sb.Var(string(seller.Division))))
	} else {
		parts = append(parts, "0")
	}

	parts = append(parts, r.geographyExpr(sb, seller))

	if specialty, ok := scoring.Normalized(seller.IndustrySpecialty); ok {
		parts = append(parts, fmt.Sprintf(
			"CASE WHEN NULLIF(TRIM(LOWER(a.industry)), '') = %s THEN 25 ELSE 0 END",
			sb.Var(specialty)))
	} else {
		parts = append(parts, "0")
	}

	if seller.Size != "" {
		parts = append(parts, fmt.Sprintf("CASE WHEN a.size = %s THEN 25 ELSE 0 END", sb.Var(string(seller.Size))))
	} else {
		parts = append(parts, "0")
	}

	return "(" + strings.Join(parts, " + ") + ") AS fit_score"
}

// geographyExpr gives full credit for a state match (including both states
// absent), partial credit for a country-only match, and zero otherwise.
func (r *Repository) geographyExpr(sb *sqlbuilder.SelectBuilder, seller *models.Seller) string {
	const (
		accountState   = "NULLIF(TRIM(LOWER(a.state)), '')"
		accountCountry = "NULLIF(TRIM(LOWER(a.country)), '')"
	)

	countryCase := "ELSE 0 END"
	if country, ok := scoring.Normalized(seller.Country); ok {
		countryCase = fmt.Sprintf("WHEN %s = %s THEN 12 ELSE 0 END", accountCountry, sb.Var(country))
	}

	if state, ok := scoring.Normalized(seller.State); ok {
		return fmt.Sprintf("CASE WHEN %s = %s THEN 25 %s", accountState, sb.Var(state), countryCase)
	}
	return fmt.Sprintf("CASE WHEN %s IS NULL THEN 25 %s", accountState, countryCase)
}

func (r *Repository) protectedBySellerExpr(sb *sqlbuilder.SelectBuilder) string {
	return fmt.Sprintf(
		"(SELECT pr.seller_id FROM relationships pr WHERE pr.tenant_id = a.tenant_id AND pr.account_id = a.id AND pr.status IN (%s) LIMIT 1) AS protected_by_seller",
		r.protectedList(sb),
	)
}

func (r *Repository) protectedList(sb *sqlbuilder.SelectBuilder) string {
	statuses := status.ProtectedStored()
	vars := make([]string, 0, len(statuses))
	for _, s := range statuses {
		vars = append(vars, sb.Var(string(s)))
	}
	return strings.Join(vars, ", ")
}

func (r *Repository) orderBy(filter models.AccountFilter, seller *models.Seller) string {
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	switch filter.SortBy {
	case "revenue":
		return "total_revenue " + direction
	case "fit":
		if seller != nil {
			return "fit_score " + direction
		}
	}
	return "a.name " + direction
}
