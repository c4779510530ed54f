package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"salesops/internal/common"
	"salesops/internal/services"
)

type SettingsHandlers struct {
	settings services.SettingsService
}

func NewSettingsHandlers(settings services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settings: settings}
}

// GetTemplates returns the organization's CRM field mapping and call analysis
// template documents. The settings group gates reads and writes alike to
// managers and admins.
func (h *SettingsHandlers) GetTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	templates, err := h.settings.GetTemplates(ctx, user.OrganizationID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, templates)
}

// UpdateTemplates replaces both template documents. Route-level role gating
// keeps reps out; this handler only needs the principal's organization.
func (h *SettingsHandlers) UpdateTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var templates services.Templates
	if err := c.Bind(&templates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.settings.UpdateTemplates(ctx, user.OrganizationID, &templates); err != nil {
		return toHTTPError(err)
	}

	stored, err := h.settings.GetTemplates(ctx, user.OrganizationID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stored)
}
