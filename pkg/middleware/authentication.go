package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	utils "github.com/Ramsey-B/stem/pkg/context"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/pkg/auth"
)

type UserClaims struct {
	Sub         string `json:"sub"`
	Email       string `json:"email"`
	TenantID    string `json:"tenant_id"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// Authentication verifies the bearer token and stores the caller's identity,
// tenant, and role on the request context.
func Authentication(logger ectologger.Logger, issuer string, clientID string) echo.MiddlewareFunc {
	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		log.Fatalf("oidc provider: %v", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx, span := tracing.StartSpan(ctx, "middleware.Authentication")
			defer span.End()

			authz := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				logger.WithContext(ctx).Warn("request is missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer")
			}

			raw := strings.TrimPrefix(authz, "Bearer ")
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			idToken, err := verifier.Verify(ctx, raw)
			if err != nil {
				logger.WithContext(ctx).WithError(err).Warn("token is invalid")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			var claims UserClaims
			if err := idToken.Claims(&claims); err != nil {
				logger.WithContext(ctx).WithError(err).Warn("failed to parse claims")
				return echo.NewHTTPError(http.StatusUnauthorized, "cannot parse claims")
			}

			role := auth.RoleFromClaims(claims.RealmAccess.Roles)
			if role == "" {
				logger.WithContext(ctx).WithFields(map[string]any{"sub": claims.Sub}).Warn("token carries no dashboard role")
				return echo.NewHTTPError(http.StatusForbidden, "no dashboard role")
			}

			ctx = utils.SetUserID(ctx, claims.Sub)
			ctx = utils.SetTenantID(ctx, claims.TenantID)
			ctx = auth.SetRole(ctx, role)

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevIdentity trusts identity headers instead of a token. Only wired when auth
// is disabled for local development.
func DevIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if userID := c.Request().Header.Get("X-User-Id"); userID != "" {
				ctx = utils.SetUserID(ctx, userID)
			}
			if tenantID := c.Request().Header.Get("X-Tenant-Id"); tenantID != "" {
				ctx = utils.SetTenantID(ctx, tenantID)
			}
			if role := c.Request().Header.Get("X-Role"); role != "" {
				ctx = auth.SetRole(ctx, auth.ParseRole(role))
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
