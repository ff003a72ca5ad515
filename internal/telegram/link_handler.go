package telegram

import (
	"context"
	"errors"
	"strings"

	"heartline/backend/internal/localization"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LinkStorage defines the storage methods required by the link commands.
type LinkStorage interface {
	ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error)
	LinkTelegram(ctx context.Context, userID string, chatID int64) error
	UnlinkTelegram(ctx context.Context, chatID int64) error
}

// HandleStartCommand processes "/start <code>": the code issued by the app
// ties this chat to the user's account. A bare /start explains how to get a
// code.
func HandleStartCommand(ctx context.Context, msg *tgbotapi.Message, s LinkStorage, bot Sender, loc *localization.Localizer) {
	lang := languageOf(msg)
	chatID := msg.Chat.ID

	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		reply(bot, chatID, loc.GetString(lang, "telegram_welcome"))
		return
	}

	userID, err := s.ConsumeTelegramLinkCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		reply(bot, chatID, loc.GetString(lang, "telegram_bad_code"))
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to consume telegram link code")
		reply(bot, chatID, loc.GetString(lang, "telegram_error"))
		return
	}

	if err := s.LinkTelegram(ctx, userID, chatID); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Str("user_id", userID).Msg("failed to link telegram chat")
		reply(bot, chatID, loc.GetString(lang, "telegram_error"))
		return
	}

	logger.Info().Int64("chat_id", chatID).Str("user_id", userID).Msg("telegram chat linked")
	reply(bot, chatID, loc.GetString(lang, "telegram_linked"))
}

// HandleStopCommand detaches this chat from whichever account it is linked to.
func HandleStopCommand(ctx context.Context, msg *tgbotapi.Message, s LinkStorage, bot Sender, loc *localization.Localizer) {
	lang := languageOf(msg)
	chatID := msg.Chat.ID

	if err := s.UnlinkTelegram(ctx, chatID); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to unlink telegram chat")
		reply(bot, chatID, loc.GetString(lang, "telegram_error"))
		return
	}
	reply(bot, chatID, loc.GetString(lang, "telegram_unlinked"))
}

func languageOf(msg *tgbotapi.Message) string {
	if msg.From != nil && msg.From.LanguageCode != "" {
		return msg.From.LanguageCode
	}
	return localization.DefaultLanguage
}

func reply(bot Sender, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram reply")
	}
}
