package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"salesops/internal/common"
	"salesops/internal/repositories"
	"salesops/internal/services"
)

// Authenticate validates the bearer token, resolves its user and puts the
// principal on the request context. Every failure is a plain 401; the reason
// is logged server-side by the auth service, never returned.
func Authenticate(auth services.AuthService, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			// Expired and malformed tokens get the same response so the
			// client cannot probe token state. The auth service logs which.
			userID, err := auth.ValidateToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil || !user.Active {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := common.WithCurrentUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
