package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/handler"
)

// RegisterAttendance registers attendance routes under /api/v1/attendance.
func RegisterAttendance(e *echo.Echo, a *handler.AttendanceHandler) {
	g := e.Group("/api/v1/attendance")
	g.POST("/check-in/:userId", a.CheckIn)
	g.POST("/check-out/:userId", a.CheckOut)
	g.GET("/user/:userId", a.ByUser)
	g.GET("/user/:userId/by-date", a.ByUserAndDate)
	g.GET("/office/:officeId", a.ByOffice)
	g.GET("", a.ListAll)
}
