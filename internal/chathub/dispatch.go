package chathub

import (
	"context"
	"fmt"

	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"
)

// HandleEvent processes one inbound event of c. The work runs on a context
// detached from the connection so an accepted event completes even if the
// connection drops meanwhile. Failures are reported to c alone.
func (h *Hub) HandleEvent(ctx context.Context, c Client, ev models.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.sendTimeout)
	defer cancel()

	err := h.dispatch(ctx, c, ev)
	if err == nil {
		return
	}

	log := logger.Debug()
	if !IsDenial(err) {
		log = logger.Error()
	}
	log.Err(err).
		Str("user_id", c.GetUserID()).
		Str("conn_id", c.GetConnID()).
		Str("event", ev.Name).
		Msg("event rejected")

	h.Reject(c, ev.Name, err)
}

func (h *Hub) dispatch(ctx context.Context, c Client, ev models.Event) error {
	switch ev.Name {
	case models.EventMatchJoin:
		var p models.MatchPayload
		if err := h.decode(ev, &p); err != nil {
			return err
		}
		return h.JoinRoom(ctx, c, p.MatchID)

	case models.EventMatchLeave:
		var p models.MatchPayload
		if err := h.decode(ev, &p); err != nil {
			return err
		}
		h.LeaveRoom(c, p.MatchID)
		return nil

	case models.EventMessageSend:
		var p models.SendPayload
		if err := h.decode(ev, &p); err != nil {
			return err
		}
		_, err := h.SendMessage(ctx, c, p)
		return err

	case models.EventMessageRead:
		var p models.ReadPayload
		if err := h.decode(ev, &p); err != nil {
			return err
		}
		return h.MarkRead(ctx, c, p.MessageID)

	case models.EventTypingStart, models.EventTypingStop:
		var p models.MatchPayload
		if err := h.decode(ev, &p); err != nil {
			return err
		}
		return h.Typing(c, p.MatchID, ev.Name == models.EventTypingStart)
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
}

func (h *Hub) decode(ev models.Event, v any) error {
	if err := ev.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// Reject sends an error event for the named inbound event to c only.
func (h *Hub) Reject(c Client, event string, err error) {
	code := ErrorCode(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	h.emit([]Client{c}, models.EventError, models.ErrorPayload{
		Event:   event,
		Code:    code,
		Message: msg,
	})
}
