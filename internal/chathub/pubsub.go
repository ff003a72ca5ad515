package chathub

import (
	"context"
	"fmt"

	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"
)

// Run listens for match lifecycle events published by other services (or
// the admin CLI) until ctx is cancelled. A match leaving ACTIVE closes its
// room.
func (h *Hub) Run(ctx context.Context) error {
	events, err := h.storage.SubscribeMatchEvents(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to match events: %w", err)
	}
	logger.Info().Msg("listening for match events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Status == models.MatchActive {
				continue
			}
			n := h.CloseMatch(ev.MatchID)
			logger.Info().Str("match_id", ev.MatchID).Int("evicted", n).Msg("match closed")
		}
	}
}

// CloseMatch empties the room of a match that is no longer active and sends
// match:closed to the evicted connections. It waits for an in-flight send
// into the same match to finish first.
func (h *Hub) CloseMatch(matchID string) int {
	unlock := h.matchLocks.Lock(matchID)
	defer unlock()

	members := h.rooms.Evict(matchID)
	h.emit(members, models.EventMatchClosed, models.MatchSignal{MatchID: matchID})
	return len(members)
}
