package handler

import (
	"errors"
	"net/http"

	"heartline/backend/internal/api/middleware"
	"heartline/backend/internal/apperr"
	"heartline/backend/internal/config"
	"heartline/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const defaultNotificationLimit = 20

func (h *Handler) ListNotifications(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		_ = c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit", defaultNotificationLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if limit > config.HistoryMaxLimit {
		limit = config.HistoryMaxLimit
	}

	items, total, err := h.Storage.GetNotifications(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	count, err := h.Storage.GetUnreadNotificationCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	err := h.Storage.MarkNotificationRead(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		_ = c.Error(apperr.NotFound("notification not found"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
