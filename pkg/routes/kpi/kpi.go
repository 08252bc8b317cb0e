package kpi

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	ctxmiddleware "github.com/Ramsey-B/stem/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/pkg/book"
)

// Register registers dashboard KPI routes
func Register(g *echo.Group) {
	g.GET("/company", Company)
}

// Company returns tenant-wide revenue aggregates
func Company(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*book.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get book service")
	}

	kpis, err := svc.GetCompanyKPIs(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, kpis)
}
