package handler

import (
	"net/http"

	"heartline/backend/internal/api/middleware"
	"heartline/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// CreateTelegramLinkCode issues a one-time code the user sends to the bot
// as /start <code>.
func (h *Handler) CreateTelegramLinkCode(c *gin.Context) {
	code, err := h.Storage.CreateTelegramLinkCode(c.Request.Context(), middleware.UserID(c), config.TelegramLinkCodeTTL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":      code,
		"expiresIn": int(config.TelegramLinkCodeTTL.Seconds()),
	})
}
