package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parley-chat/parley/internal/signaling"
)

// RoomInfoResponse describes a room's live occupancy. Rooms are implicit,
// so an unknown ID is reported as an empty room rather than an error.
type RoomInfoResponse struct {
	RoomID    string   `json:"roomId"`
	Members   int      `json:"members"`
	VideoCall []string `json:"videoCall"`
	VoiceCall []string `json:"voiceCall"`
}

// GetRoomInfo reports who is connected to a room and who is in each kind
// of call, straight from the in-memory state.
func GetRoomInfo(srv *signaling.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
			return
		}

		members := srv.RoomMembers(roomID)
		reg := srv.Registry()

		video := reg.Members(roomID, signaling.CallVideo)
		if video == nil {
			video = []string{}
		}
		voice := reg.Members(roomID, signaling.CallVoice)
		if voice == nil {
			voice = []string{}
		}

		c.JSON(http.StatusOK, RoomInfoResponse{
			RoomID:    roomID,
			Members:   len(members),
			VideoCall: video,
			VoiceCall: voice,
		})
	}
}
