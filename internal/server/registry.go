package server

import (
	"sync"

	"github.com/pdolan/connectra/internal/stats"
)

// RoomRegistry maps room names to the set of currently connected clients
// joined to them. Rooms hold no history: they are created implicitly on
// first join and destroyed when the last member leaves. Membership is
// purely in-memory and never persisted.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	stats stats.StatsProvider
}

func NewRoomRegistry(statsProvider stats.StatsProvider) *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[*Client]struct{}),
		stats: statsProvider,
	}
}

// Join adds the client to the room's member set. Idempotent.
func (r *RoomRegistry) Join(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
		r.stats.Incr(stats.ActiveRooms)
	}
	members[c] = struct{}{}
}

// Leave removes the client from the room's member set; a no-op if the
// client never joined.
func (r *RoomRegistry) Leave(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(c, room)
}

func (r *RoomRegistry) leaveLocked(c *Client, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
		r.stats.Decr(stats.ActiveRooms)
	}
}

// RemoveClient removes the client from every room it belongs to. Called
// on disconnect; no explicit leave is required.
func (r *RoomRegistry) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.rooms {
		if _, ok := members[c]; ok {
			r.leaveLocked(c, room)
		}
	}
}

// Members returns a snapshot of the room's current member set. Unknown
// rooms yield an empty snapshot.
func (r *RoomRegistry) Members(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Client, 0, len(r.rooms[room]))
	for c := range r.rooms[room] {
		members = append(members, c)
	}
	return members
}

func (r *RoomRegistry) Contains(c *Client, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[room][c]
	return ok
}

func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
