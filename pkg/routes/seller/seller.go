package seller

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	ctxmiddleware "github.com/Ramsey-B/stem/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/internal/repositories/manager"
	"github.com/Ramsey-B/sage/internal/repositories/seller"
	"github.com/Ramsey-B/sage/pkg/assignment"
	"github.com/Ramsey-B/sage/pkg/auth"
	"github.com/Ramsey-B/sage/pkg/book"
	"github.com/Ramsey-B/sage/pkg/models"
)

// Register registers seller routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.GET("/:id", Get)
	g.GET("/:id/book", GetBook)
	g.GET("/:id/kpis", GetKPIs)
	g.POST("/:id/finalize", Finalize)
	g.DELETE("/:id/finalize", Reopen)
}

// List returns the paginated seller listing. MANAGER callers only see their
// own sellers; the scope is forced server-side, not trusted from the filter.
func List(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var filter models.SellerFilter
	if err := c.Bind(&filter); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	if auth.GetRole(ctx) == models.RoleManager {
		ctx2, managerRepo, err := ectoinject.GetContext[*manager.Repository](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
		}
		ctx = ctx2
		mgr, err := managerRepo.GetByUser(ctx, tenantID, ctxmiddleware.GetUserID(ctx))
		if err != nil {
			return err
		}
		if mgr == nil {
			return httperror.NewHTTPError(http.StatusForbidden, "no manager profile for the requesting user")
		}
		filter.ManagerID = mgr.ID
	}

	ctx, repo, err := ectoinject.GetContext[*seller.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	resp, err := repo.List(ctx, tenantID, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Get returns a single seller by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*seller.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetBook returns a seller's full book with revenue KPIs
func GetBook(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	ctx, svc, err := ectoinject.GetContext[*book.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get book service")
	}

	result, err := svc.GetSellerBook(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetKPIs returns just the revenue aggregates for a seller
func GetKPIs(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	ctx, svc, err := ectoinject.GetContext[*book.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get book service")
	}

	result, err := svc.GetSellerKPIs(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Finalize marks a seller's book as finalized
func Finalize(c echo.Context) error {
	return setFinalized(c, true)
}

// Reopen clears the finalized flag on a seller's book
func Reopen(c echo.Context) error {
	return setFinalized(c, false)
}

func setFinalized(c echo.Context, finalized bool) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")
	actor := assignment.Actor{
		UserID: ctxmiddleware.GetUserID(ctx),
		Role:   auth.GetRole(ctx),
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	if err := svc.FinalizeBook(ctx, tenantID, actor, id, finalized); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"finalized": finalized})
}
