package chathub

import (
	"context"
	"unicode/utf8"

	"heartline/backend/internal/config"
	"heartline/backend/internal/localization"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"
)

// notify records a notification for the other participant of msg and
// pushes it over their personal channel, or to the offline pusher when they
// have no live connection. Every failure here is logged and swallowed: the
// message itself is already delivered.
func (h *Hub) notify(ctx context.Context, match *models.Match, msg *models.Message) {
	recipientID, ok := match.OtherParticipant(msg.SenderID)
	if !ok {
		return
	}
	log := logger.Log.With().
		Str("match_id", match.ID).
		Str("message_id", msg.ID).
		Str("recipient_id", recipientID).
		Logger()

	lang := localization.DefaultLanguage
	recipient, err := h.storage.GetUserByID(ctx, recipientID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load notification recipient")
	} else if recipient.Language != "" {
		lang = recipient.Language
	}

	senderName := h.localizer.GetString(lang, "notification_someone")
	if sender, err := h.storage.GetUserByID(ctx, msg.SenderID); err == nil && sender.DisplayName != "" {
		senderName = sender.DisplayName
	}

	n := &models.Notification{
		UserID:    recipientID,
		Title:     h.localizer.Sprintf(lang, "notification_title", senderName),
		Content:   h.summarize(lang, msg),
		Type:      models.NotificationMessage,
		RelatedID: match.ID,
		ActionURL: "/matches/" + match.ID,
	}
	if err := h.storage.SaveNotification(ctx, n); err != nil {
		log.Error().Err(err).Msg("failed to save notification")
		return
	}

	if conns := h.presence.Connections(recipientID); len(conns) > 0 {
		h.emit(conns, models.EventNotificationNew, models.NotificationSignal{
			Type:    n.Type,
			MatchID: match.ID,
		})
		return
	}

	if h.pusher == nil || recipient == nil || recipient.TelegramChatID == 0 {
		return
	}
	if err := h.pusher.Push(ctx, recipient, n); err != nil {
		log.Warn().Err(err).Msg("offline push failed")
	}
}

// summarize renders the notification body in the recipient's language.
func (h *Hub) summarize(lang string, msg *models.Message) string {
	switch msg.Type {
	case models.MessageImage:
		return h.localizer.GetString(lang, "notification_photo")
	case models.MessageFile:
		return h.localizer.Sprintf(lang, "notification_file", msg.FileName)
	}
	return truncate(msg.Content, config.NotificationPreviewLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
