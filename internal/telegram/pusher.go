package telegram

import (
	"context"
	"fmt"

	"heartline/backend/internal/localization"
	"heartline/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used to write to chats.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Pusher delivers notifications to users that are offline but linked a
// Telegram chat.
type Pusher struct {
	bot       Sender
	localizer *localization.Localizer
}

func NewPusher(bot Sender, localizer *localization.Localizer) *Pusher {
	return &Pusher{bot: bot, localizer: localizer}
}

// Push sends the notification title and summary to the user's linked chat.
func (p *Pusher) Push(ctx context.Context, user *models.User, n *models.Notification) error {
	if user.TelegramChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, p.localizer.Sprintf(user.Language, "telegram_push", n.Title, n.Content))
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram push to chat %d: %w", user.TelegramChatID, err)
	}
	return nil
}
