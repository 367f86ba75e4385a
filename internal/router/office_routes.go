package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/handler"
	"github.com/iliyamo/office-operations/internal/middleware"
)

// RegisterOffices registers office management routes under
// /api/v1/offices.  Reads are open; creating, renaming and deleting an
// office is restricted to admins and managers.
func RegisterOffices(e *echo.Echo, o *handler.OfficeHandler, jwtSecret string) {
	g := e.Group("/api/v1/offices")
	g.GET("", o.List)
	g.GET("/:id", o.Get)
	g.GET("/:id/users", o.ListUsers)

	admin := e.Group("/api/v1/offices")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("admin", "manager"))
	admin.POST("", o.Create)
	admin.PUT("/:id", o.Update)
	admin.DELETE("/:id", o.Delete)
}
