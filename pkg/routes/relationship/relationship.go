package relationship

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	ctxmiddleware "github.com/Ramsey-B/stem/pkg/context"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/internal/repositories/relationship"
	"github.com/Ramsey-B/sage/pkg/assignment"
	"github.com/Ramsey-B/sage/pkg/auth"
	"github.com/Ramsey-B/sage/pkg/models"
)

var validate = validator.New()

// Register registers relationship routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id/status", UpdateStatus)
	g.DELETE("/:id", Delete)
}

// List returns a seller's relationships joined with account and revenue data
func List(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	sellerID := c.QueryParam("seller_id")
	if sellerID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "seller_id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*relationship.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rows, err := repo.ListBySeller(ctx, tenantID, sellerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rows)
}

// Get returns a single relationship by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*relationship.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Create assigns an account to a seller at a target status. Manager-initiated
// changes may come back as a pending request instead of a relationship.
func Create(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := assignment.Actor{
		UserID: ctxmiddleware.GetUserID(ctx),
		Role:   auth.GetRole(ctx),
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	result, err := svc.Assign(ctx, tenantID, actor, req)
	if err != nil {
		return err
	}

	httpStatus := http.StatusCreated
	if result.Request != nil {
		httpStatus = http.StatusAccepted
	}
	return c.JSON(httpStatus, result)
}

// UpdateStatus moves a relationship to a new status
func UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := assignment.Actor{
		UserID: ctxmiddleware.GetUserID(ctx),
		Role:   auth.GetRole(ctx),
	}

	ctx, svc, err := ectoinject.GetContext[*assignment.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assignment service")
	}

	result, err := svc.Move(ctx, tenantID, actor, id, req.Status)
	if err != nil {
		return err
	}

	httpStatus := http.StatusOK
	if result.Request != nil {
		httpStatus = http.StatusAccepted
	}
	return c.JSON(httpStatus, result)
}

// Delete unassigns an account, dropping it back to available
func Delete(c echo.Context) error {
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

	result, err := svc.Unassign(ctx, tenantID, actor, id)
	if err != nil {
		return err
	}

	if result.Request != nil {
		return c.JSON(http.StatusAccepted, result)
	}
	return c.NoContent(http.StatusNoContent)
}
