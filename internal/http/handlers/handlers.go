package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/courseloop/support-backend/internal/channels/telegram"
	"github.com/courseloop/support-backend/internal/db"
	"github.com/courseloop/support-backend/internal/dispatch"
	"github.com/courseloop/support-backend/internal/telemetry"
)

type Handler struct {
	Store      *db.Store
	Dispatcher *dispatch.Dispatcher
	Telegram   telegram.Sender
	Telemetry  *telemetry.Recorder
	Validator  *validator.Validate
	Logger     zerolog.Logger

	MaxMessageLen int
}

// inboundEvent is the normalized shape every webhook must satisfy before the
// dispatcher runs.
type inboundEvent struct {
	ExternalID string `validate:"required"`
	Text       string `validate:"required"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
