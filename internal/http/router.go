package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/courseloop/support-backend/internal/ai"
	"github.com/courseloop/support-backend/internal/channels/telegram"
	"github.com/courseloop/support-backend/internal/channels/vapi"
	"github.com/courseloop/support-backend/internal/config"
	"github.com/courseloop/support-backend/internal/db"
	"github.com/courseloop/support-backend/internal/dispatch"
	"github.com/courseloop/support-backend/internal/http/handlers"
	"github.com/courseloop/support-backend/internal/http/middleware"
	"github.com/courseloop/support-backend/internal/telemetry"

	_ "github.com/courseloop/support-backend/docs"
)

func Router(cfg config.Config, store *db.Store, generator ai.Generator, sender telegram.Sender, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	recorder := &telemetry.Recorder{Store: store, Logger: logger}
	dispatcher := &dispatch.Dispatcher{
		Store:         store,
		Generator:     generator,
		Telemetry:     recorder,
		Logger:        logger,
		MaxMessageLen: cfg.MaxMessageLen,
		HistoryWindow: cfg.HistoryWindow,
	}

	h := &handlers.Handler{
		Store:         store,
		Dispatcher:    dispatcher,
		Telegram:      sender,
		Telemetry:     recorder,
		Validator:     validator.New(),
		Logger:        logger,
		MaxMessageLen: cfg.MaxMessageLen,
	}

	r.GET("/healthz", h.Healthz)

	hooks := r.Group("/webhooks")
	{
		hooks.POST("/telegram",
			middleware.SharedSecret(telegram.SecretHeader, cfg.TelegramWebhookSecret, logger),
			h.TelegramWebhook)
		hooks.POST("/vapi",
			middleware.SharedSecret(vapi.SecretHeader, cfg.VapiSecret, logger),
			h.VapiWebhook)
	}

	api := r.Group("/api")
	api.Use(middleware.AdminKey(cfg.AdminKey))
	{
		api.GET("/cases", h.CasesList)
		api.GET("/cases/:id", h.CaseDetails)
		api.GET("/telemetry", h.TelemetryList)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
