package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/office-operations/internal/utils"
)

const testSecret = "unit-test-secret"

func authRequest(t *testing.T, configure func(*http.Request)) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c, called
}

// TestJWTAuthBearer verifies the Authorization-header path and the claims
// handed to downstream handlers.
func TestJWTAuthBearer(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "a@b.com", "admin", 1)
	require.NoError(t, err)

	rec, c, called := authRequest(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), c.Get("user_id"))
	assert.Equal(t, "a@b.com", c.Get("email"))
	assert.Equal(t, "admin", c.Get("role"))
}

// TestJWTAuthCookie verifies that the login cookie works without a header.
func TestJWTAuthCookie(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "c@d.com", "employee", 1)
	require.NoError(t, err)

	rec, c, called := authRequest(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "token", Value: tok.Token})
	})
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "employee", c.Get("role"))
}

// TestJWTAuthRejections covers the unauthorized paths: no credentials,
// garbage, and a token from another deployment's secret.
func TestJWTAuthRejections(t *testing.T) {
	rec, _, called := authRequest(t, nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")

	rec, _, called = authRequest(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not.a.jwt")
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")

	other, err := utils.NewAccessToken("other-secret", 1, "x@y.com", "admin", 1)
	require.NoError(t, err)
	rec, _, called = authRequest(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+other.Token)
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestRequireRole verifies the role gate over the context value JWTAuth
// stores.
func TestRequireRole(t *testing.T) {
	run := func(role any) (int, bool) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/3", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		called := false
		handler := RequireRole("admin", "manager")(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec.Code, called
	}

	code, called := run("admin")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, code)

	code, called = run("manager")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, code)

	code, called = run("employee")
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, code)

	code, called = run(nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, code)
}
