package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// ServeRoomPage serves the chat page for any room ID. The room ID only
// travels in the URL; the page's script reads it back out of the path and
// joins the room over the WebSocket.
func ServeRoomPage(staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		c.File(index)
	}
}

// HandleHealth is the load-balancer health probe.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
