package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"salesops/internal/common"
	"salesops/internal/models"
	"salesops/internal/repositories"
	"salesops/internal/services"
)

type UserHandlers struct {
	accounts services.AccountService
	users    repositories.UserRepository
}

func NewUserHandlers(accounts services.AccountService, users repositories.UserRepository) *UserHandlers {
	return &UserHandlers{accounts: accounts, users: users}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Create provisions a user inside the admin's own organization. Admin-only at
// the route level.
func (h *UserHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	admin, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := validateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := validatePassword(req.Password); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}
	if err := common.ValidateRequiredString(req.FullName, "full_name"); err != nil {
		return common.SendValidationError(c, "full_name", err.Error())
	}

	user, err := h.accounts.CreateUser(ctx, services.CreateUserInput{
		OrganizationID: admin.OrganizationID,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           models.Role(req.Role),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// List returns the organization's users.
func (h *UserHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.GetCurrentUser(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	users, err := h.users.List(ctx, user.OrganizationID, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}
