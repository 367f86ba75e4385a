package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/handler"
	"github.com/iliyamo/office-operations/internal/middleware"
)

// RegisterMessages registers messaging routes under /api/v1/messages.
// Reading an office's history is open; writing requires a token because
// the author and the ownership checks come from the claims.
func RegisterMessages(e *echo.Echo, m *handler.MessageHandler, jwtSecret string) {
	g := e.Group("/api/v1/messages")
	g.GET("/:officeId", m.ByOffice)

	auth := e.Group("/api/v1/messages")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("", m.Create)
	auth.PUT("/:id", m.Update)
	auth.DELETE("/:id", m.Delete)
}
