package handler

import (
	"context"
	"net/http"

	"heartline/backend/internal/auth"
	"heartline/backend/internal/chathub"
	"heartline/backend/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ServeWebSocket authenticates the request and upgrades it. A rejected
// token never reaches the upgrade, so the client sees a plain HTTP error.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, err := h.Verifier.Authenticate(c.Request.Context(), auth.TokenFromRequest(c.Request))
	if err != nil {
		status := auth.HTTPStatus(err)
		logger.Debug().Err(err).Str("ip", c.ClientIP()).Msg("websocket authentication rejected")
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	var limiter *rate.Limiter
	if h.EventRate > 0 {
		limiter = rate.NewLimiter(h.EventRate, h.EventBurst)
	}
	client := chathub.NewWebSocketClient(h.Hub, conn, userID, limiter)

	if err := h.Hub.Register(context.WithoutCancel(c.Request.Context()), client); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("websocket registration refused")
		client.Close()
		client.Run()
		return
	}

	client.Run()
}
