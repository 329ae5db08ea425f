package signaling

import (
	"sort"
	"sync"
)

// CallKind identifies which kind of call a presence entry belongs to.
type CallKind string

const (
	CallVideo CallKind = "video"
	CallVoice CallKind = "voice"
)

// CallKinds lists every kind the server tracks. Disconnect cleanup walks
// this list so a vanished peer is removed from all calls it was in.
var CallKinds = []CallKind{CallVideo, CallVoice}

// Registry tracks which connections are in an active call of each kind,
// per room. Rooms and kind entries are created on first join and deleted
// as soon as their last member leaves; an empty set is never kept around.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[CallKind]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[CallKind]map[string]struct{}),
	}
}

// JoinCall adds connID to the presence set for (roomID, kind). Joining a
// call the connection is already in is a no-op.
func (r *Registry) JoinCall(roomID string, kind CallKind, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds, ok := r.rooms[roomID]
	if !ok {
		kinds = make(map[CallKind]map[string]struct{})
		r.rooms[roomID] = kinds
	}
	set, ok := kinds[kind]
	if !ok {
		set = make(map[string]struct{})
		kinds[kind] = set
	}
	set[connID] = struct{}{}
}

// LeaveCall removes connID from the presence set for (roomID, kind) and
// reports whether it was a member. Leaving a call the connection was never
// in is a no-op, not an error.
func (r *Registry) LeaveCall(roomID string, kind CallKind, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	set, ok := kinds[kind]
	if !ok {
		return false
	}
	if _, member := set[connID]; !member {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(kinds, kind)
	}
	if len(kinds) == 0 {
		delete(r.rooms, roomID)
	}
	return true
}

// IsEmpty reports whether no connection is in a kind call in roomID.
func (r *Registry) IsEmpty(roomID string, kind CallKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds, ok := r.rooms[roomID]
	if !ok {
		return true
	}
	return len(kinds[kind]) == 0
}

// Members returns the connection IDs in a kind call in roomID, sorted.
func (r *Registry) Members(roomID string, kind CallKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	set, ok := kinds[kind]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// hasRoom reports whether any presence entry exists for roomID. Used by
// tests to verify empty entries are pruned.
func (r *Registry) hasRoom(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}
