package handler

import (
	"net/http"

	"heartline/backend/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Register mounts every route on r. apiLimiter may be nil.
func (h *Handler) Register(r *gin.Engine, apiLimiter *middleware.IPRateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	if apiLimiter != nil {
		api.Use(middleware.RateLimit(apiLimiter))
	}
	api.Use(middleware.Auth(h.Verifier))
	{
		api.GET("/presence", h.GetPresence)
		api.GET("/matches/:id/messages", h.GetMessages)

		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread-count", h.UnreadNotificationCount)
		api.PUT("/notifications/:id/read", h.MarkNotificationRead)

		api.POST("/telegram/link-code", h.CreateTelegramLinkCode)
	}
}

// NewRouter builds the engine with the shared middleware stack.
func NewRouter(h *Handler, origins []string, apiLimiter *middleware.IPRateLimiter) *gin.Engine {
	r := gin.New()
	// Logging wraps ErrorHandler so it sees the final status.
	r.Use(middleware.Logging())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(origins))
	h.Register(r, apiLimiter)
	return r
}
