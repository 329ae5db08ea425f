package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/parley-chat/parley/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// HandleWebSocket upgrades the connection and hands it to the signaling
// server. The client is not in any room yet; its first frame is expected
// to be join-room, carrying the room ID the page URL gave it.
func HandleWebSocket(srv *signaling.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("failed to upgrade connection: %v", err)
			return
		}

		client := signaling.NewClient(uuid.New().String(), conn)
		log.Printf("peer %s connected", client.ID)

		go client.WritePump()
		go client.ReadPump(srv)
	}
}
