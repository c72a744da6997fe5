package middlewares

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/tool"
)

// OnlyAllowLocal rejects every client that is not on the loopback interface. It looks at the
// socket peer only; forwarding headers are ignored.
func OnlyAllowLocal(c *gin.Context) {
	remote := c.RemoteIP()
	if ip := net.ParseIP(remote); ip != nil && ip.IsLoopback() {
		c.Next()
		return
	}
	tool.DefaultLogger.Warnf("[Server] rejected %s %s from %s", c.Request.Method, c.Request.URL.Path, remote)
	c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
}
