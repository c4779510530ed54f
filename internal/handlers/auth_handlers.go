package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"salesops/internal/caching"
	"salesops/internal/common"
	"salesops/internal/models"
	"salesops/internal/services"
)

// Login attempts per client IP inside the window before 429s start.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

type AuthHandlers struct {
	accounts services.AccountService
	cache    caching.CacheService
}

func NewAuthHandlers(accounts services.AccountService, cache caching.CacheService) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, cache: cache}
}

type RegisterRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
}

type RegisterResponse struct {
	Organization *models.Organization `json:"organization"`
	User         *models.User         `json:"user"`
}

// Register creates an organization and its first admin user.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.OrganizationName, "organization_name"); err != nil {
		return common.SendValidationError(c, "organization_name", err.Error())
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

	org, user, err := h.accounts.Register(c.Request().Context(), services.RegisterInput{
		OrganizationName: req.OrganizationName,
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{Organization: org, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	limited, err := h.cache.IsRateLimited(ctx, "login:"+c.RealIP(), loginRateLimit, loginRateWindow)
	if err == nil && limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts")
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	token, user, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Me returns the authenticated principal.
func (h *AuthHandlers) Me(c echo.Context) error {
	user, ok := common.GetCurrentUser(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errRequired("email")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return errInvalid("email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errTooShort("password", 8)
	}
	return nil
}
