package chathub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"heartline/backend/internal/config"
	"heartline/backend/internal/localization"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

// OfflinePusher forwards a notification to a user that has no live
// connection.
type OfflinePusher interface {
	Push(ctx context.Context, user *models.User, n *models.Notification) error
}

type Option func(*Hub)

func WithLocalizer(l *localization.Localizer) Option {
	return func(h *Hub) { h.localizer = l }
}

func WithOfflinePusher(p OfflinePusher) Option {
	return func(h *Hub) { h.pusher = p }
}

// WithSendTimeout bounds the storage work done for a single inbound event.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) { h.sendTimeout = d }
}

// Hub owns all connection state of the process: who is online, which
// connections sit in which match room, and the locks that order presence
// transitions per user and sends per match.
type Hub struct {
	storage  storage.Storage
	presence *Presence
	rooms    *Rooms

	userLocks  *keyedMutex
	matchLocks *keyedMutex

	validate    *validator.Validate
	localizer   *localization.Localizer
	pusher      OfflinePusher
	sendTimeout time.Duration

	mu     sync.Mutex
	closed bool
	conns  sync.WaitGroup
}

func NewHub(s storage.Storage, opts ...Option) *Hub {
	h := &Hub{
		storage:     s,
		presence:    NewPresence(),
		rooms:       NewRooms(),
		userLocks:   newKeyedMutex(),
		matchLocks:  newKeyedMutex(),
		validate:    validator.New(),
		sendTimeout: config.SendTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.localizer == nil {
		h.localizer = localization.Bundled()
	}
	return h
}

func (h *Hub) Presence() *Presence { return h.presence }

func (h *Hub) Rooms() *Rooms { return h.rooms }

// Register adds a live connection. The user's first connection announces
// them online to everybody else, unless they hide their status.
func (h *Hub) Register(ctx context.Context, c Client) error {
	unlock := h.userLocks.Lock(c.GetUserID())
	defer unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrShuttingDown
	}
	added, first := h.presence.Add(c)
	if added {
		h.conns.Add(1)
	}
	h.mu.Unlock()

	if !added {
		return nil
	}

	logger.Debug().
		Str("user_id", c.GetUserID()).
		Str("conn_id", c.GetConnID()).
		Bool("first", first).
		Msg("connection registered")

	if first {
		h.announce(ctx, c.GetUserID(), models.EventUserOnline)
	}
	return nil
}

// Unregister removes a connection from every room and from presence. The
// user's last connection going away records last-seen and announces them
// offline. Calling it again for the same connection does nothing.
func (h *Hub) Unregister(ctx context.Context, c Client) {
	userID := c.GetUserID()
	unlock := h.userLocks.Lock(userID)
	defer unlock()

	existed, last := h.presence.Remove(c)
	left := h.rooms.LeaveAll(c)
	if !existed {
		return
	}
	defer h.conns.Done()

	logger.Debug().
		Str("user_id", userID).
		Str("conn_id", c.GetConnID()).
		Strs("left_matches", left).
		Bool("last", last).
		Msg("connection unregistered")

	if !last {
		return
	}
	if err := h.storage.SetLastSeen(ctx, userID, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("failed to record last seen")
	}
	h.announce(ctx, userID, models.EventUserOffline)
}

// announce broadcasts a presence change to every connection of every other
// user. A failed visibility lookup suppresses the broadcast.
func (h *Hub) announce(ctx context.Context, userID, event string) {
	visible, err := h.storage.IsPresenceVisible(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Str("event", event).Msg("visibility lookup failed, skipping presence broadcast")
		return
	}
	if !visible {
		return
	}

	all := h.presence.All()
	targets := make([]Client, 0, len(all))
	for _, c := range all {
		if c.GetUserID() != userID {
			targets = append(targets, c)
		}
	}
	h.emit(targets, event, models.PresenceSignal{UserID: userID})
}

// QueryOnline resolves current presence for a batch of users. A user counts
// as online only with a live connection and visibility enabled.
func (h *Hub) QueryOnline(ctx context.Context, userIDs []string) map[string]bool {
	out := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if _, seen := out[id]; seen {
			continue
		}
		if !h.presence.IsConnected(id) {
			out[id] = false
			continue
		}
		visible, err := h.storage.IsPresenceVisible(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", id).Msg("visibility lookup failed, reporting offline")
		}
		out[id] = err == nil && visible
	}
	return out
}

func (h *Hub) IsOnline(ctx context.Context, userID string) bool {
	return h.QueryOnline(ctx, []string{userID})[userID]
}

// emit sends one event to each target. Connections whose queue is full are
// disconnected rather than waited for.
func (h *Hub) emit(targets []Client, name string, payload any) {
	if len(targets) == 0 {
		return
	}
	ev, err := models.NewEvent(name, payload)
	if err != nil {
		logger.Error().Err(err).Str("event", name).Msg("failed to encode event")
		return
	}
	for _, c := range targets {
		if !c.Deliver(ev) {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c Client) {
	logger.Warn().
		Str("user_id", c.GetUserID()).
		Str("conn_id", c.GetConnID()).
		Msg("outbound queue overflow, disconnecting")
	c.Close()

	// The caller may hold another user's lock.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.sendTimeout)
		defer cancel()
		h.Unregister(ctx, c)
	}()
}

// Shutdown stops accepting connections, closes the live ones and waits for
// them to unregister.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	conns := h.presence.All()
	logger.Info().Int("connections", len(conns)).Msg("closing connections")
	for _, c := range conns {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		h.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timed out with %d connections still open", len(h.presence.All()))
	}
}
