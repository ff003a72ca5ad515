package chathub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"heartline/backend/internal/config"
	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"
)

// JoinRoom subscribes c to a match room after checking the match exists, is
// ACTIVE and includes c's user. The requester gets match:joined back.
//
// The match lock orders the join against CloseMatch, so a room is never
// repopulated after it was closed.
func (h *Hub) JoinRoom(ctx context.Context, c Client, matchID string) error {
	unlock := h.matchLocks.Lock(matchID)
	defer unlock()

	if _, err := h.authorizeMatch(ctx, c.GetUserID(), matchID); err != nil {
		return err
	}

	// Unregister removes presence before rooms, so checking presence after
	// joining catches a disconnect racing this call.
	h.rooms.Join(c, matchID)
	if !h.presence.Contains(c) {
		h.rooms.Leave(c, matchID)
		return ErrNotRegistered
	}
	h.emit([]Client{c}, models.EventMatchJoined, models.MatchSignal{MatchID: matchID})
	return nil
}

func (h *Hub) LeaveRoom(c Client, matchID string) {
	h.rooms.Leave(c, matchID)
}

// authorizeMatch loads the match fresh from storage; membership and status
// are never taken from an earlier join.
func (h *Hub) authorizeMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := h.storage.GetMatchByID(ctx, matchID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if !match.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	if !match.IsActive() {
		return nil, ErrMatchInactive
	}
	return match, nil
}

// SendMessage validates, persists and broadcasts a chat message, then
// notifies the other participant. Sends into one match are serialized so
// every member observes them in persistence order.
func (h *Hub) SendMessage(ctx context.Context, c Client, p models.SendPayload) (*models.Message, error) {
	if err := h.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	content, err := normalizeContent(p.Content)
	if err != nil {
		return nil, err
	}
	if content == "" && p.File == nil {
		return nil, ErrEmptyMessage
	}

	unlock := h.matchLocks.Lock(p.MatchID)
	match, err := h.authorizeMatch(ctx, c.GetUserID(), p.MatchID)
	if err != nil {
		unlock()
		return nil, err
	}

	msg := &models.Message{
		MatchID:  match.ID,
		SenderID: c.GetUserID(),
		Content:  content,
		Type:     models.ClassifyMessageType(p.File),
	}
	if f := p.File; f != nil {
		msg.FileURL = f.URL
		msg.FileKey = f.Key
		msg.FileName = f.Name
		msg.FileSize = f.Size
		msg.FileType = f.Type
	}

	if err := h.storage.SaveMessage(ctx, msg); err != nil {
		unlock()
		return nil, fmt.Errorf("save message: %w", err)
	}
	h.emit(h.rooms.Members(match.ID), models.EventMessageNew, msg.Payload())
	unlock()

	h.notify(ctx, match, msg)
	return msg, nil
}

// normalizeContent trims the text, drops invalid UTF-8 and control
// characters other than newlines and tabs, and enforces the length limit.
func normalizeContent(s string) (string, error) {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > config.MaxContentLength {
		return "", ErrContentTooLong
	}
	return s, nil
}
