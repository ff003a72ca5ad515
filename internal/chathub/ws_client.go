package chathub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"heartline/backend/internal/config"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	ConnID string
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub

	limiter *rate.Limiter
	send    chan models.Event

	mu     sync.Mutex
	closed bool
}

// NewWebSocketClient wraps an upgraded connection. limiter throttles inbound
// events; nil disables throttling.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, userID string, limiter *rate.Limiter) *WebSocketClient {
	return &WebSocketClient{
		ConnID:  uuid.NewString(),
		UserID:  userID,
		Conn:    conn,
		Hub:     hub,
		limiter: limiter,
		send:    make(chan models.Event, config.SendBufferSize),
	}
}

func (c *WebSocketClient) GetConnID() string { return c.ConnID }
func (c *WebSocketClient) GetUserID() string { return c.UserID }

func (c *WebSocketClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Run starts the pumps. The read pump unregisters the connection from the
// hub when it exits.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the outbound queue; the write pump then sends a close frame
// and tears the socket down, which ends the read pump.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Close()
		c.Conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), config.SendTimeout)
		defer cancel()
		c.Hub.Unregister(ctx, c)
	}()

	c.Conn.SetReadLimit(config.MaxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Str("conn_id", c.ConnID).Msg("websocket read failed")
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
			c.Hub.Reject(c, "", ErrInvalidPayload)
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.Hub.Reject(c, ev.Name, ErrRateLimited)
			continue
		}

		c.Hub.HandleEvent(context.Background(), c, ev)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
				logger.Debug().Err(err).Str("conn_id", c.ConnID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
