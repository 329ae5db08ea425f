package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

// iceServerResponse is the browser-facing RTCIceServer shape.
type iceServerResponse struct {
	URLs []string `json:"urls"`
}

// GetICEServers hands clients the STUN server list to use when building
// their RTCPeerConnection configuration. STUN only: address discovery is
// provided, relaying is not.
func GetICEServers(servers []webrtc.ICEServer) gin.HandlerFunc {
	out := make([]iceServerResponse, 0, len(servers))
	for _, s := range servers {
		out = append(out, iceServerResponse{URLs: s.URLs})
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": out})
	}
}
