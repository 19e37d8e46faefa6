package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courseloop/support-backend/internal/ai"
	"github.com/courseloop/support-backend/internal/channels/telegram"
	"github.com/courseloop/support-backend/internal/config"
	"github.com/courseloop/support-backend/internal/db"
	httpapi "github.com/courseloop/support-backend/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "support-dispatcher").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	var generator ai.Generator
	if cfg.GenBaseURL == "" {
		generator = ai.MockGenerator{}
		logger.Info().Msg("using mock reply generator")
	} else {
		generator = ai.OpenAICompatGenerator{
			BaseURL:   cfg.GenBaseURL,
			Model:     cfg.GenModel,
			APIKey:    cfg.GenAPIKey,
			MaxTokens: cfg.GenMaxTokens,
		}
	}

	var sender telegram.Sender
	if cfg.TelegramToken != "" {
		sender, err = telegram.NewBotSender(cfg.TelegramToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init telegram sender")
		}
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN not set, telegram replies will not be delivered")
	}

	router := httpapi.Router(cfg, store, generator, sender, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
