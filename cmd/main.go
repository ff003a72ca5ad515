package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heartline/backend/internal/api/handler"
	"heartline/backend/internal/api/middleware"
	"heartline/backend/internal/auth"
	"heartline/backend/internal/chathub"
	"heartline/backend/internal/config"
	"heartline/backend/internal/localization"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/storage"
	"heartline/backend/internal/telegram"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().Str("env", cfg.Env).Msg("starting heartline realtime server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, rdb, err := storage.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect dependencies")
	}
	defer rdb.Close()

	if err := storage.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	s := storage.NewStorageService(db, rdb)
	localizer := localization.Bundled()

	// 2. Hub, with Telegram as the offline channel when configured
	opts := []chathub.Option{chathub.WithLocalizer(localizer)}
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start telegram bot")
		}
		opts = append(opts, chathub.WithOfflinePusher(telegram.NewPusher(bot, localizer)))
		go telegram.NewBotService(bot, s, localizer).Run(ctx)
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN not set, offline push disabled")
	}

	hub := chathub.NewHub(s, opts...)
	go func() {
		if err := hub.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("match event listener stopped")
		}
	}()

	// 3. HTTP
	apiLimiter := middleware.NewIPRateLimiter(20, 40)
	go apiLimiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	verifier := auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, s)
	h := handler.NewHandler(hub, s, verifier, cfg.Origins(), cfg.EventRatePerSecond, cfg.EventBurst)
	router := handler.NewRouter(h, cfg.Origins(), apiLimiter)

	// WriteTimeout stays unset: hijacked websocket connections manage their
	// own deadlines.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	if err := hub.Shutdown(shutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("hub shutdown incomplete")
	}
	logger.Info().Msg("stopped")
}
