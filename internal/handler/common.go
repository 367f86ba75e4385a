package handler // handler defines http handlers

import (
	"context" // context carries deadlines into the repositories
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time provides the request timeout

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getUserID extracts the authenticated user's id from echo.Context and
// converts it to uint64.  JWT claims decode numbers as float64, so every
// plausible representation is accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// reqCtx bounds a handler's database work with the usual timeout.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
