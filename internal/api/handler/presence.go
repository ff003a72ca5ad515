package handler

import (
	"net/http"
	"strings"

	"heartline/backend/internal/apperr"
	"heartline/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

const maxPresenceQuery = 100

// GetPresence answers GET /api/presence?ids=a,b with who is online and,
// for offline users that share their status, when they were last seen.
func (h *Handler) GetPresence(c *gin.Context) {
	ids := splitIDs(c.Query("ids"))
	if len(ids) == 0 {
		_ = c.Error(apperr.BadRequest("ids is required"))
		return
	}
	if len(ids) > maxPresenceQuery {
		_ = c.Error(apperr.BadRequest("too many ids"))
		return
	}

	ctx := c.Request.Context()
	online := h.Hub.QueryOnline(ctx, ids)

	var offline []string
	for _, id := range ids {
		if online[id] {
			continue
		}
		visible, err := h.Storage.IsPresenceVisible(ctx, id)
		if err != nil || !visible {
			continue
		}
		offline = append(offline, id)
	}

	lastSeen, err := h.Storage.GetLastSeen(ctx, offline)
	if err != nil {
		logger.Warn().Err(err).Msg("last seen lookup failed")
		lastSeen = nil
	}
	seen := make(map[string]string, len(lastSeen))
	for id, t := range lastSeen {
		seen[id] = t.UTC().Format(timeLayout)
	}

	c.JSON(http.StatusOK, gin.H{
		"online":   online,
		"lastSeen": seen,
	})
}

func splitIDs(raw string) []string {
	var out []string
	dedup := make(map[string]struct{})
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := dedup[id]; ok {
			continue
		}
		dedup[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
