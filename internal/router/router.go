package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/office-operations/internal/handler"  // import the handlers that implement business logic
	"github.com/iliyamo/office-operations/internal/realtime" // realtime serves the websocket endpoint
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check, a root banner and the websocket
// endpoint clients use to receive live events.
func RegisterRoutes(e *echo.Echo, hub *realtime.Hub) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "WebSocket API is running")
	})
	// Clients connect here and then send join/join-office commands to
	// subscribe to their rooms.  Membership is per connection; after a
	// reconnect the client sends its joins again.
	e.GET("/ws", realtime.Serve(hub))
}
