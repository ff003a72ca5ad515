package chathub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"
)

// MarkRead records that c's user read a message sent to them and tells the
// room. Reading an already read message is a silent no-op; so is losing a
// race against a concurrent reader.
func (h *Hub) MarkRead(ctx context.Context, c Client, messageID string) error {
	msg, err := h.storage.GetMessageByID(ctx, messageID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load message %s: %w", messageID, err)
	}

	match, err := h.storage.GetMatchByID(ctx, msg.MatchID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load match %s: %w", msg.MatchID, err)
	}

	userID := c.GetUserID()
	if !match.HasParticipant(userID) || msg.SenderID == userID {
		return ErrForbidden
	}
	if !match.IsActive() {
		return ErrMatchInactive
	}
	if msg.IsRead() {
		return nil
	}

	readAt := time.Now().UTC()
	updated, err := h.storage.MarkMessageRead(ctx, msg.ID, readAt)
	if err != nil {
		return fmt.Errorf("mark message %s read: %w", msg.ID, err)
	}
	if !updated {
		return nil
	}

	h.emit(h.rooms.Members(msg.MatchID), models.EventMessageRead, models.ReadReceiptPayload{
		MessageID: msg.ID,
		MatchID:   msg.MatchID,
		ReadAt:    readAt,
	})
	return nil
}

// Typing relays a typing start/stop to the rest of the room. Nothing is
// stored and the server never expires a typing state on its own.
func (h *Hub) Typing(c Client, matchID string, started bool) error {
	if !h.rooms.IsMember(c, matchID) {
		return ErrNotJoined
	}

	event := models.EventTypingStop
	if started {
		event = models.EventTypingStart
	}

	members := h.rooms.Members(matchID)
	targets := members[:0]
	for _, m := range members {
		if m.GetConnID() != c.GetConnID() {
			targets = append(targets, m)
		}
	}
	h.emit(targets, event, models.TypingSignal{UserID: c.GetUserID(), MatchID: matchID})
	return nil
}
