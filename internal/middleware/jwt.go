package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates an access token and
// injects the token's subject, email and role claims into the request
// context.  The token is read from the "token" cookie first and falls back
// to a Bearer Authorization header, so both browser and API clients work.
// The provided secret must match the one used when issuing tokens.  This
// middleware should wrap protected routes so that handlers can access
// authenticated user information via `c.Get("user_id")` and `c.Get("role")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			// Prefer the cookie set at login.
			if ck, err := c.Cookie("token"); err == nil && ck.Value != "" {
				raw = ck.Value
			}
			// Fall back to "Authorization: Bearer <token>".
			if raw == "" {
				auth := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					raw = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Access denied, login first!"})
			}

			// Parse the token using the HS256 signing method and our secret.
			// If the signing method differs, reject the token.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			// Store the subject (user ID), email and role claims in the
			// context.  Handlers access these via c.Get(); type assertions
			// are left to the consumers.
			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
