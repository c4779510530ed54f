package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"salesops/internal/common"
)

// RequestLogger emits one structured line per request. When a principal is on
// the context the line carries organization and user ids, which is what makes
// tenant activity traceable.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			event := log.Info()
			if status >= 500 {
				event = log.Error().Err(err)
			}
			if user, ok := common.GetCurrentUser(c.Request().Context()); ok {
				event = event.
					Str("organization_id", user.OrganizationID.String()).
					Str("user_id", user.ID.String())
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
