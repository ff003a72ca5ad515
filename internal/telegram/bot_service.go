// Package telegram links user accounts to Telegram chats and pushes message
// notifications there while the user is offline.
package telegram

import (
	"context"

	"heartline/backend/internal/localization"
	"heartline/backend/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the bot service relies on.
type BotAPI interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotService receives Telegram updates and handles the link commands.
type BotService struct {
	Bot       BotAPI
	Storage   LinkStorage
	Localizer *localization.Localizer
}

// NewBotAPI authorizes against the Bot API with token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	logger.Info().Str("account", bot.Self.UserName).Msg("telegram bot authorized")
	return bot, nil
}

func NewBotService(bot BotAPI, s LinkStorage, localizer *localization.Localizer) *BotService {
	return &BotService{
		Bot:       bot,
		Storage:   s,
		Localizer: localizer,
	}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx
// is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.Bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		s.Bot.StopReceivingUpdates()
	}()

	for update := range updates {
		s.HandleUpdate(ctx, update)
	}
	logger.Info().Msg("telegram bot stopped")
}

// HandleUpdate routes a single update. Anything but /start and /stop gets
// the welcome text.
func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	switch msg.Command() {
	case "start":
		HandleStartCommand(ctx, msg, s.Storage, s.Bot, s.Localizer)
	case "stop":
		HandleStopCommand(ctx, msg, s.Storage, s.Bot, s.Localizer)
	default:
		reply(s.Bot, msg.Chat.ID, s.Localizer.GetString(languageOf(msg), "telegram_welcome"))
	}
}
