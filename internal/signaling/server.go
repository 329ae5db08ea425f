// Package signaling implements the relay at the center of parley: rooms of
// WebSocket peers exchanging chat text and WebRTC negotiation messages, plus
// per-room bookkeeping of who is in an active video or voice call. The
// server treats every payload as opaque; it never parses SDP or ICE data.
package signaling

import (
	"encoding/json"
	"log"
	"sync"
)

// PresenceMirror receives call presence changes so they can be reflected
// into an external store. Implementations must be non-blocking best-effort;
// the registry, not the mirror, is the source of truth. A nil mirror
// disables mirroring.
type PresenceMirror interface {
	AddPeer(roomID string, kind CallKind, connID string)
	RemovePeer(roomID string, kind CallKind, connID string)
}

// Server routes every inbound frame for every connection. Rooms come into
// existence when first joined and are deleted when their last connection
// leaves.
type Server struct {
	registry *Registry
	mirror   PresenceMirror

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewServer(registry *Registry, mirror PresenceMirror) *Server {
	return &Server{
		registry: registry,
		mirror:   mirror,
		rooms:    make(map[string]*Room),
	}
}

// Registry exposes the call presence registry for the HTTP room-info API.
func (s *Server) Registry() *Registry {
	return s.registry
}

// roomJoinedAck is sent back to a connection after join-room so the client
// learns its server-assigned ID and can match "from" fields against it.
type roomJoinedAck struct {
	ID   string `json:"id"`
	Room string `json:"room"`
}

// relayedPayload is the shape of a relayed negotiation message: the opaque
// payload under its event-specific key, plus the sender's connection ID.
// Built as a map because the key ("offer", "answer", "candidate") varies.
func relayedPayload(key string, payload json.RawMessage, from string) map[string]any {
	data := payload
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return map[string]any{
		key:    data,
		"from": from,
	}
}

// HandleMessage dispatches one inbound frame. Any event other than
// join-room arriving before the connection has joined a room is silently
// dropped; the relay is best-effort and never surfaces protocol errors to
// the sender.
func (s *Server) HandleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unparseable frame from peer %s: %v", c.ID, err)
		return
	}

	if env.Event == EventJoinRoom {
		s.handleJoin(c, env.Data)
		return
	}

	if c.room == nil {
		log.Printf("peer %s sent %s before joining a room, dropped", c.ID, env.Event)
		return
	}

	switch env.Event {
	case EventChatMessage:
		s.handleChat(c, env.Data)
	default:
		if _, ok := relayPayloadKeys[env.Event]; ok {
			s.handleRelay(c, env.Event, env.Data)
			return
		}
		if t, ok := callTransitions[env.Event]; ok {
			s.handleCallTransition(c, t)
			return
		}
		log.Printf("unknown event %q from peer %s", env.Event, c.ID)
	}
}

// handleJoin subscribes the connection to a room. The room is set once:
// a second join-room is a no-op, which closes the double-join ambiguity
// the browser client never exercises.
func (s *Server) handleJoin(c *Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		log.Printf("peer %s sent join-room with bad room id, dropped", c.ID)
		return
	}

	if c.room != nil {
		log.Printf("peer %s already in room %s, ignoring join-room %q", c.ID, c.room.ID, roomID)
		return
	}

	room := s.getOrCreateRoom(roomID)
	room.add(c)
	c.room = room

	log.Printf("peer %s joined room %s (%d members)", c.ID, roomID, room.size())

	if frame, ok := encodeFrame(EventRoomJoined, roomJoinedAck{ID: c.ID, Room: roomID}); ok {
		c.enqueue(frame)
	}
}

// handleChat mirrors the chat string to every room member, sender
// included, so the sender's UI renders its own message through the same
// path as remote ones. The payload stays opaque.
func (s *Server) handleChat(c *Client, data json.RawMessage) {
	frame, err := json.Marshal(Envelope{Event: EventChatMessage, Data: data})
	if err != nil {
		log.Printf("failed to marshal chat frame: %v", err)
		return
	}
	c.room.broadcast(frame, "")
}

// handleRelay forwards a negotiation payload to every other room member,
// wrapped with the sender's ID. No acknowledgment, no retry.
func (s *Server) handleRelay(c *Client, event string, data json.RawMessage) {
	frame, ok := encodeFrame(event, relayedPayload(relayPayloadKeys[event], data, c.ID))
	if !ok {
		return
	}
	c.room.broadcast(frame, c.ID)
}

// handleCallTransition updates the presence registry for a call-start or
// call-end and tells the rest of the room who joined or left. An explicit
// call-end for a call the peer never started notifies nobody.
func (s *Server) handleCallTransition(c *Client, t callTransition) {
	if t.start {
		s.registry.JoinCall(c.room.ID, t.kind, c.ID)
		if s.mirror != nil {
			s.mirror.AddPeer(c.room.ID, t.kind, c.ID)
		}
	} else {
		if !s.registry.LeaveCall(c.room.ID, t.kind, c.ID) {
			return
		}
		if s.mirror != nil {
			s.mirror.RemovePeer(c.room.ID, t.kind, c.ID)
		}
	}

	if frame, ok := encodeFrame(t.notify, c.ID); ok {
		c.room.broadcast(frame, c.ID)
	}
}

// Disconnect removes a connection from its room and from every call it was
// in, notifying the remaining members once per call kind. Safe to call for
// connections that never joined a room.
func (s *Server) Disconnect(c *Client) {
	room := c.room
	if room == nil {
		return
	}

	for _, kind := range CallKinds {
		if !s.registry.LeaveCall(room.ID, kind, c.ID) {
			continue
		}
		if s.mirror != nil {
			s.mirror.RemovePeer(room.ID, kind, c.ID)
		}
		if frame, ok := encodeFrame(callLeftEvent(kind), c.ID); ok {
			room.broadcast(frame, c.ID)
		}
	}

	s.removeFromRoom(room, c)
	log.Printf("peer %s left room %s", c.ID, room.ID)
}

func (s *Server) getOrCreateRoom(roomID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		room = newRoom(roomID)
		s.rooms[roomID] = room
		log.Printf("created room %s", roomID)
	}
	return room
}

func (s *Server) removeFromRoom(room *Room, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.remove(c) {
		delete(s.rooms, room.ID)
		log.Printf("removed empty room %s", room.ID)
	}
}

// RoomMembers returns the connection IDs currently in roomID, or nil if
// the room does not exist.
func (s *Server) RoomMembers(roomID string) []string {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return room.memberIDs()
}
