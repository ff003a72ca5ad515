package chathub

import "sync"

// Rooms maps matches to the connections subscribed to them. Membership lives
// only as long as the connection does.
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Client
	joined map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]Client),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join subscribes c to the match room. Joining twice is a no-op.
func (r *Rooms) Join(c Client, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[matchID]
	if !ok {
		members = make(map[string]Client)
		r.rooms[matchID] = members
	}
	members[c.GetConnID()] = c

	matches, ok := r.joined[c.GetConnID()]
	if !ok {
		matches = make(map[string]struct{})
		r.joined[c.GetConnID()] = matches
	}
	matches[matchID] = struct{}{}
}

// Leave unsubscribes c from the match room. Leaving a room that was never
// joined is a no-op.
func (r *Rooms) Leave(c Client, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c.GetConnID(), matchID)
}

// LeaveAll removes c from every room and returns the matches it left.
func (r *Rooms) LeaveAll(c Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []string
	for matchID := range r.joined[c.GetConnID()] {
		left = append(left, matchID)
		r.leaveLocked(c.GetConnID(), matchID)
	}
	return left
}

// Evict empties the room and returns the connections that were in it.
func (r *Rooms) Evict(matchID string) []Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[matchID]
	out := make([]Client, 0, len(members))
	for connID, c := range members {
		out = append(out, c)
		r.leaveLocked(connID, matchID)
	}
	return out
}

func (r *Rooms) leaveLocked(connID, matchID string) {
	if members, ok := r.rooms[matchID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, matchID)
		}
	}
	if matches, ok := r.joined[connID]; ok {
		delete(matches, matchID)
		if len(matches) == 0 {
			delete(r.joined, connID)
		}
	}
}

// Members returns a snapshot of the room.
func (r *Rooms) Members(matchID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Client, 0, len(r.rooms[matchID]))
	for _, c := range r.rooms[matchID] {
		out = append(out, c)
	}
	return out
}

func (r *Rooms) IsMember(c Client, matchID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[matchID][c.GetConnID()]
	return ok
}

// Joined lists the matches c is subscribed to.
func (r *Rooms) Joined(c Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.joined[c.GetConnID()]))
	for matchID := range r.joined[c.GetConnID()] {
		out = append(out, matchID)
	}
	return out
}
