package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/handler"
	"github.com/iliyamo/office-operations/internal/middleware"
)

// RegisterUsers registers account and profile routes under /api/v1/users.
// Registration and login are public; login additionally sits behind the
// strict authentication-attempt limiter.  Everything else requires a valid
// token.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, loginLimiter echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/api/v1/users")
	g.POST("/create", u.Create)
	g.POST("/login", u.Login, loginLimiter)
	g.POST("/logout", u.Logout)

	auth := e.Group("/api/v1/users")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/profile", u.Profile)
	auth.PUT("/profile/update/:id", u.Update)
	auth.PUT("/change-password", u.ChangePassword)
	auth.DELETE("/delete", u.DeleteSelf)
	auth.GET("/:id", u.GetByID)
	auth.PUT("/:id", u.Update)

	// Removing arbitrary accounts is reserved for office administrators.
	admin := e.Group("/api/v1/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("admin", "manager"))
	admin.DELETE("/delete-by-id/:id", u.DeleteByID)
}
