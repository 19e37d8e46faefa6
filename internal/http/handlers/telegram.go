package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"

	"github.com/courseloop/support-backend/internal/dispatch"
	"github.com/courseloop/support-backend/internal/models"
)

// TelegramWebhook handles Bot API update callbacks. Non-message updates are
// acknowledged and skipped; the provider must always get a 2xx or it retries.
func (h *Handler) TelegramWebhook(c *gin.Context) {
	var update telego.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", nil)
		return
	}

	msg := update.Message
	if msg == nil || msg.Text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if msg.Chat.ID == 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing chat identity", nil)
		return
	}

	text := dispatch.Truncate(msg.Text, h.MaxMessageLen)
	ev := inboundEvent{
		ExternalID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:       text,
	}
	if err := h.Validator.Struct(ev); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", nil)
		return
	}

	reply, err := h.Dispatcher.Handle(c.Request.Context(), dispatch.Inbound{
		Channel:         models.ChannelTelegram,
		ExternalID:      ev.ExternalID,
		DisplayName:     displayName(msg),
		Text:            ev.Text,
		NativeMessageID: strconv.Itoa(msg.MessageID),
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("telegram dispatch failed")
		writeError(c, http.StatusInternalServerError, "DISPATCH_ERROR", "Failed to process update", nil)
		return
	}

	// Delivery failures are telemetry, not request failures: Telegram already
	// has our acknowledgment of the update.
	if h.Telegram != nil {
		if err := h.Telegram.SendText(c.Request.Context(), msg.Chat.ID, reply.Text); err != nil {
			h.Logger.Error().Err(err).Str("case_id", reply.Case.ID).Msg("telegram send failed")
			if h.Telemetry != nil {
				h.Telemetry.Record(c.Request.Context(), "telegram", "error", "delivery_failed",
					map[string]any{"error": err.Error()}, &reply.Case.ID)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "case_id": reply.Case.ID})
}

func displayName(msg *telego.Message) string {
	if msg.From == nil {
		return ""
	}
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if name == "" {
		name = msg.From.Username
	}
	return name
}
