package signaling

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the connection is
	// considered dead.
	pongWait = 60 * time.Second

	// Ping interval; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. SDP offers are the largest thing a
	// client legitimately sends and fit comfortably in 64 KB.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client is one WebSocket connection. The room pointer is nil until the
// connection joins a room and is set exactly once after that; it is only
// ever touched from the connection's own read pump, so it needs no lock.
type Client struct {
	ID   string
	Send chan []byte

	conn *websocket.Conn
	room *Room
}

// NewClient wraps an upgraded connection. conn may be nil in tests, which
// drive the server through HandleMessage directly and read frames off Send.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, sendBufferSize),
		conn: conn,
	}
}

// enqueue queues a frame for the write pump, dropping it if the client's
// buffer is full. Delivery is best-effort by design.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.Send <- frame:
	default:
		log.Printf("dropping frame for peer %s, send buffer full", c.ID)
	}
}

// ReadPump reads frames from the WebSocket and hands them to the server
// for dispatch. It is the single reader for the connection and owns the
// disconnect cleanup: when it returns, the client is removed from its room
// and from every call presence set, and the peers are notified.
func (c *Client) ReadPump(s *Server) {
	defer func() {
		s.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("read error for peer %s: %v", c.ID, err)
			}
			break
		}
		s.HandleMessage(c, raw)
	}
}

// WritePump is the single writer for the connection: it drains the Send
// channel and keeps the connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("write error for peer %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
