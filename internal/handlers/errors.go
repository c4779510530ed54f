package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"salesops/internal/common"
)

// toHTTPError maps service sentinels onto HTTP statuses. Anything unmapped is
// a plain 500 with a generic message; internal detail stays in the logs.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	case errors.Is(err, common.ErrBadCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, common.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, common.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func errRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}

func errInvalid(field string) error {
	return fmt.Errorf("%s is not valid", field)
}

func errTooShort(field string, min int) error {
	return fmt.Errorf("%s must be at least %d characters", field, min)
}
