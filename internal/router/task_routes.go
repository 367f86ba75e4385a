package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/handler"
)

// RegisterTasks registers task routes under /api/v1/tasks.  The static
// /status and /user and /office prefixes are registered before the /:id
// catch-all so echo matches them first.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler) {
	g := e.Group("/api/v1/tasks")
	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/status", t.ByStatus)
	g.GET("/user/:userId", t.ByUser)
	g.GET("/office/:id", t.ByOffice)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}
