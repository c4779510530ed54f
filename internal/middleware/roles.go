package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"salesops/internal/common"
	"salesops/internal/models"
)

// RequireRole gates a route group to the listed roles. Runs after
// Authenticate, so a missing principal is a 401 rather than a 403.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := common.GetCurrentUser(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}
			return next(c)
		}
	}
}

// RequireSettingsManager gates every organization settings route, reads
// included. Delegates to the role model so route wiring and the model agree
// on who may touch settings.
func RequireSettingsManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := common.GetCurrentUser(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !user.Role.CanManageSettings() {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}
			return next(c)
		}
	}
}
