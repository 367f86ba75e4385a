package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// The API is served to browser frontends on other origins, so the upgrader
// mirrors the permissive CORS policy of the HTTP routes.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Serve returns the echo handler that upgrades GET /ws to a websocket
// session registered with the hub.  The handler blocks for the lifetime of
// the connection; echo runs each request on its own goroutine.
func Serve(h *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		s := newSession(h, conn)
		go s.writePump()
		s.readPump()
		return nil
	}
}
