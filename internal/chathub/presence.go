package chathub

import "sync"

// Presence tracks every live connection per user. A user is online while it
// holds at least one connection; the connection set doubles as the user's
// personal channel.
type Presence struct {
	mu    sync.RWMutex
	users map[string]map[string]Client
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]map[string]Client)}
}

// Add registers c. added is false when c was already registered; first is
// true when c is the user's only connection after a new add.
func (p *Presence) Add(c Client) (added, first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.users[c.GetUserID()]
	if !ok {
		conns = make(map[string]Client)
		p.users[c.GetUserID()] = conns
	}
	if _, ok := conns[c.GetConnID()]; ok {
		return false, false
	}
	conns[c.GetConnID()] = c
	return true, len(conns) == 1
}

// Remove drops c. existed is false when c was not registered; last is true
// when c was the user's final connection.
func (p *Presence) Remove(c Client) (existed, last bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.users[c.GetUserID()]
	if !ok {
		return false, false
	}
	if _, ok := conns[c.GetConnID()]; !ok {
		return false, false
	}
	delete(conns, c.GetConnID())
	if len(conns) == 0 {
		delete(p.users, c.GetUserID())
		return true, true
	}
	return true, false
}

func (p *Presence) Contains(c Client) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[c.GetUserID()][c.GetConnID()]
	return ok
}

func (p *Presence) IsConnected(userID string) bool {
	return p.Count(userID) > 0
}

func (p *Presence) Count(userID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users[userID])
}

// Connections returns a snapshot of the user's connections.
func (p *Presence) Connections(userID string) []Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Client, 0, len(p.users[userID]))
	for _, c := range p.users[userID] {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every live connection.
func (p *Presence) All() []Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []Client
	for _, conns := range p.users {
		for _, c := range conns {
			out = append(out, c)
		}
	}
	return out
}

// Users returns the ids of every online user.
func (p *Presence) Users() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.users))
	for id := range p.users {
		out = append(out, id)
	}
	return out
}
