package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseloop/support-backend/internal/channels/vapi"
	"github.com/courseloop/support-backend/internal/dispatch"
	"github.com/courseloop/support-backend/internal/models"
)

// VapiWebhook handles voice-assistant server messages. The reply is carried
// in the response body; for tool invocations it is echoed as the structured
// function result.
func (h *Handler) VapiWebhook(c *gin.Context) {
	var env vapi.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", nil)
		return
	}

	msg := env.Message
	if msg.Call == nil || msg.Call.ID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing call identity", nil)
		return
	}

	// Assistant-side transcripts and lifecycle events carry nothing to answer.
	if msg.Type == "transcript" && msg.Role != "user" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	text := dispatch.Truncate(msg.Text(), h.MaxMessageLen)
	if text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ev := inboundEvent{ExternalID: msg.Call.ID, Text: text}
	if err := h.Validator.Struct(ev); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", nil)
		return
	}

	var caller string
	if msg.Call.Customer != nil {
		caller = msg.Call.Customer.Name
	}
	reply, err := h.Dispatcher.Handle(c.Request.Context(), dispatch.Inbound{
		Channel:     models.ChannelVapi,
		ExternalID:  ev.ExternalID,
		DisplayName: caller,
		Text:        ev.Text,
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("vapi dispatch failed")
		writeError(c, http.StatusInternalServerError, "DISPATCH_ERROR", "Failed to process message", nil)
		return
	}

	if msg.FunctionCall != nil {
		c.JSON(http.StatusOK, gin.H{"result": reply.Text})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "case_id": reply.Case.ID, "reply": reply.Text})
}
