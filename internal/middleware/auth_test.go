package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesops/internal/common"
	"salesops/internal/models"
	"salesops/internal/repositories"
	"salesops/internal/services"
)

type stubUsers struct {
	repositories.UserRepository
	user *models.User
	err  error
}

func (s *stubUsers) GetByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func performRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/calls", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Role:           models.RoleRep,
		Active:         true,
	}
	token, err := auth.IssueToken(user.ID, time.Hour)
	require.NoError(t, err)

	var seen *models.User
	mw := Authenticate(auth, &stubUsers{user: user})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/calls", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		seen, _ = common.GetCurrentUser(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	rec := performRequest(t, Authenticate(auth, &stubUsers{}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsNonBearerHeader(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	rec := performRequest(t, Authenticate(auth, &stubUsers{}), "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	forger := services.NewAuthService("some-other-secret", zerolog.Nop())
	token, err := forger.IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	rec := performRequest(t, Authenticate(auth, &stubUsers{}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsDeactivatedUser(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	user := &models.User{ID: uuid.New(), Active: false}
	token, err := auth.IssueToken(user.ID, time.Hour)
	require.NoError(t, err)

	rec := performRequest(t, Authenticate(auth, &stubUsers{user: user}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredTokenIndistinguishableFromForged(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	expired, err := auth.IssueToken(uuid.New(), -time.Minute)
	require.NoError(t, err)
	forger := services.NewAuthService("some-other-secret", zerolog.Nop())
	forged, err := forger.IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	expiredRec := performRequest(t, Authenticate(auth, &stubUsers{}), "Bearer "+expired)
	forgedRec := performRequest(t, Authenticate(auth, &stubUsers{}), "Bearer "+forged)

	assert.Equal(t, http.StatusUnauthorized, expiredRec.Code)
	assert.Equal(t, forgedRec.Body.String(), expiredRec.Body.String())
	assert.NotContains(t, expiredRec.Body.String(), "expired")
}

func TestRequireRoleForbidsOutsiders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", nil)
	req = req.WithContext(common.WithCurrentUser(req.Context(), &models.User{
		ID:   uuid.New(),
		Role: models.RoleRep,
	}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole(models.RoleAdmin)(okHandler)(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestRequireRoleAdmitsListedRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", nil)
	req = req.WithContext(common.WithCurrentUser(req.Context(), &models.User{
		ID:   uuid.New(),
		Role: models.RoleAdmin,
	}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RequireRole(models.RoleAdmin)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutPrincipalIsUnauthorized(t *testing.T) {
	rec := performRequest(t, RequireRole(models.RoleAdmin), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// newSettingsRouter wires the settings routes the way the server does, with
// the role gate on the group so reads and writes are covered alike.
func newSettingsRouter(auth services.AuthService, users *stubUsers) *echo.Echo {
	e := echo.New()
	protected := e.Group("/v1", Authenticate(auth, users))
	settings := protected.Group("/settings", RequireSettingsManager())
	settings.GET("/templates", okHandler)
	settings.PUT("/templates", okHandler)
	return e
}

func TestSettingsRoutesForbidRep(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	rep := &models.User{ID: uuid.New(), Role: models.RoleRep, Active: true}
	token, err := auth.IssueToken(rep.ID, time.Hour)
	require.NoError(t, err)
	e := newSettingsRouter(auth, &stubUsers{user: rep})

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		req := httptest.NewRequest(method, "/v1/settings/templates", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, method)
	}
}

func TestSettingsRoutesAdmitManagerAndAdmin(t *testing.T) {
	auth := services.NewAuthService("middleware-test-secret", zerolog.Nop())
	for _, role := range []models.Role{models.RoleManager, models.RoleAdmin} {
		user := &models.User{ID: uuid.New(), Role: role, Active: true}
		token, err := auth.IssueToken(user.ID, time.Hour)
		require.NoError(t, err)
		e := newSettingsRouter(auth, &stubUsers{user: user})

		req := httptest.NewRequest(http.MethodGet, "/v1/settings/templates", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, role)
	}
}

func TestRequireSettingsManagerWithoutPrincipalIsUnauthorized(t *testing.T) {
	rec := performRequest(t, RequireSettingsManager(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
