package signaling

import (
	"sort"
	"sync"
)

// Room groups the live connections subscribed to one room ID. Rooms are
// never created explicitly: referencing an unknown ID brings the room into
// existence, and the server deletes it once the last connection leaves.
type Room struct {
	ID    string
	mu    sync.RWMutex
	peers map[string]*Client
}

func newRoom(id string) *Room {
	return &Room{
		ID:    id,
		peers: make(map[string]*Client),
	}
}

func (r *Room) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[c.ID] = c
}

// remove deletes a client and reports whether the room is now empty.
func (r *Room) remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, c.ID)
	return len(r.peers) == 0
}

// broadcast queues frame on every peer in the room. If excludeID is
// non-empty that peer is skipped; chat echo passes "" so the sender
// receives its own message through the same path as everyone else.
func (r *Room) broadcast(frame []byte, excludeID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, peer := range r.peers {
		if id == excludeID {
			continue
		}
		peer.enqueue(frame)
	}
}

// memberIDs returns the connection IDs currently in the room, sorted.
func (r *Room) memberIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.peers))
	for id := range r.peers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
