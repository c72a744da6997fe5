package notify

import (
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/moneylens-go/tool"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: loopbackOrigin,
}

// loopbackOrigin accepts non-browser clients (no Origin) and pages served from this machine.
func loopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

var wsEnabled = true

// SetWSEnabled switches the /notify-ws route on or off (config notifyWs).
func SetWSEnabled(v bool) {
	wsEnabled = v
}

func WSEnabled() bool {
	return wsEnabled
}

// HandleNotifyWS upgrades the request to WebSocket and registers the connection with the hub.
func HandleNotifyWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer func() {
			if err := conn.Close(); err != nil {
				tool.DefaultLogger.Errorf("Failed to close WebSocket connection: %v", err)
			}
		}()

		hub.Register(conn)
		defer hub.Unregister(conn)

		// Read loop to detect client close and keep connection alive
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}
