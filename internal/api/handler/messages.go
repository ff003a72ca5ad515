package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"heartline/backend/internal/api/middleware"
	"heartline/backend/internal/apperr"
	"heartline/backend/internal/config"
	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const timeLayout = time.RFC3339Nano

// GetMessages serves GET /api/matches/:id/messages?before=&limit=, newest
// first. Only participants of the match may read it, unmatched or not.
func (h *Handler) GetMessages(c *gin.Context) {
	userID := middleware.UserID(c)
	matchID := c.Param("id")
	ctx := c.Request.Context()

	match, err := h.Storage.GetMatchByID(ctx, matchID)
	if errors.Is(err, storage.ErrNotFound) {
		_ = c.Error(apperr.NotFound("match not found"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !match.HasParticipant(userID) {
		_ = c.Error(apperr.ErrForbidden)
		return
	}

	before := time.Time{}
	if raw := c.Query("before"); raw != "" {
		before, err = time.Parse(timeLayout, raw)
		if err != nil {
			_ = c.Error(apperr.BadRequest("before must be an RFC3339 timestamp"))
			return
		}
	}

	limit, err := queryInt(c, "limit", config.HistoryDefaultLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if limit > config.HistoryMaxLimit {
		limit = config.HistoryMaxLimit
	}

	msgs, err := h.Storage.GetChatHistory(ctx, matchID, before, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]models.MessagePayload, 0, len(msgs))
	for i := range msgs {
		out = append(out, msgs[i].Payload())
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// queryInt reads a positive integer query parameter, def when absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.BadRequest(name + " must be a positive integer")
	}
	return n, nil
}
