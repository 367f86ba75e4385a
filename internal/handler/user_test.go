package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanEditUser pins the edit authorization rule: own account always,
// other accounts only with a privileged role.
func TestCanEditUser(t *testing.T) {
	cases := []struct {
		name            string
		tokenID, target uint64
		role            string
		allowed         bool
	}{
		{"own account as employee", 7, 7, "employee", true},
		{"other account as employee", 7, 8, "employee", false},
		{"other account as admin", 7, 8, "admin", true},
		{"other account as manager", 7, 8, "manager", true},
		{"other account with no role", 7, 8, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, canEditUser(tc.tokenID, tc.target, tc.role))
		})
	}
}

// TestUpdateRejectsForeignTarget verifies the handler honors the path id:
// an employee pointing the route at someone else's account is turned away
// before any database work.
func TestUpdateRejectsForeignTarget(t *testing.T) {
	h := &UserHandler{} // the request must be rejected before any dependency is touched

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("8")
	c.Set("user_id", float64(7)) // JWT claims decode numerics as float64
	c.Set("role", "employee")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authorized")
}

// TestUpdateRejectsBadTargetID verifies a non-numeric path id is a 400.
func TestUpdateRejectsBadTargetID(t *testing.T) {
	h := &UserHandler{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("self")
	c.Set("user_id", float64(7))
	c.Set("role", "admin")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
