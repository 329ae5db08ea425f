package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/signaling"
)

func apiRouter(srv *signaling.Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", HandleHealth)
	r.GET("/api/rooms/:roomId", GetRoomInfo(srv))
	return r
}

func getJSON(t *testing.T, r *gin.Engine, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	r := apiRouter(signaling.NewServer(signaling.NewRegistry(), nil))

	var resp map[string]string
	code := getJSON(t, r, "/health", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
}

func TestRoomInfoUnknownRoomIsEmpty(t *testing.T) {
	r := apiRouter(signaling.NewServer(signaling.NewRegistry(), nil))

	var resp RoomInfoResponse
	code := getJSON(t, r, "/api/rooms/nowhere", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "nowhere", resp.RoomID)
	assert.Zero(t, resp.Members)
	assert.Empty(t, resp.VideoCall)
	assert.Empty(t, resp.VoiceCall)
}

func TestRoomInfoReflectsLiveState(t *testing.T) {
	srv := signaling.NewServer(signaling.NewRegistry(), nil)
	r := apiRouter(srv)

	joinFrame, err := json.Marshal(signaling.Envelope{
		Event: signaling.EventJoinRoom,
		Data:  json.RawMessage(`"r1"`),
	})
	require.NoError(t, err)
	startFrame, err := json.Marshal(signaling.Envelope{Event: signaling.EventVideoCallStart})
	require.NoError(t, err)

	a := signaling.NewClient("a", nil)
	b := signaling.NewClient("b", nil)
	srv.HandleMessage(a, joinFrame)
	srv.HandleMessage(b, joinFrame)
	srv.HandleMessage(a, startFrame)

	var resp RoomInfoResponse
	code := getJSON(t, r, "/api/rooms/r1", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Members)
	assert.Equal(t, []string{"a"}, resp.VideoCall)
	assert.Empty(t, resp.VoiceCall)
}

func TestICEServersEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/ice-servers", GetICEServers([]webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
		{URLs: []string{"stun:stun1.l.google.com:19302"}},
	}))

	var resp struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	code := getJSON(t, r, "/api/ice-servers", &resp)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, resp.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, resp.ICEServers[0].URLs)
}

func TestOriginFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OriginFilter([]string{"http://localhost:3000"}))
	r.GET("/health", HandleHealth)

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"allowed origin", "http://localhost:3000", http.StatusOK},
		{"no origin header", "", http.StatusOK},
		{"forbidden origin", "http://evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
