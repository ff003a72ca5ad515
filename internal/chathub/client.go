package chathub

import "heartline/backend/internal/models"

// Client is one live connection of a user. The hub only talks to
// connections through this interface, so transports and test doubles are
// interchangeable.
type Client interface {
	// GetConnID returns an identifier unique to this connection.
	GetConnID() string
	// GetUserID returns the authenticated user that owns the connection.
	GetUserID() string

	// Deliver queues an event for the connection without blocking. It
	// returns false when the outbound queue is full or the connection is
	// already closed.
	Deliver(ev models.Event) bool

	// Run starts the connection's read and write loops.
	Run()
	// Close stops the connection. It is safe to call more than once.
	Close()
}
