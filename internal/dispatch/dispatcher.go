package dispatch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/courseloop/support-backend/internal/ai"
	"github.com/courseloop/support-backend/internal/models"
	"github.com/courseloop/support-backend/internal/telemetry"
)

var ErrEmptyMessage = errors.New("empty message")

// Inbound is a normalized channel event, already authenticated and
// structurally validated by the channel adapter.
type Inbound struct {
	Channel         models.Channel
	ExternalID      string
	DisplayName     string
	Text            string
	NativeMessageID string
}

// Reply is what the adapter delivers back over the channel's native transport.
type Reply struct {
	Case     models.SupportCase
	Text     string
	Command  Command
	Created  bool
	Fallback bool
}

type Dispatcher struct {
	Store         Store
	Generator     ai.Generator
	Telemetry     *telemetry.Recorder
	Logger        zerolog.Logger
	MaxMessageLen int
	HistoryWindow int
}

// Handle runs the full pipeline for one inbound event: resolve case, log the
// inbound message, route commands or generate a persona reply, log the reply.
// Store failures are fatal for the event; generation failures degrade to a
// fixed fallback reply.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) (Reply, error) {
	maxLen := d.MaxMessageLen
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	text := Truncate(in.Text, maxLen)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	cmd, isCommand := ParseCommand(text)

	resolver := CaseResolver{Store: d.Store}
	c, created, err := resolver.Resolve(ctx, in.Channel, in.ExternalID, in.DisplayName)
	if err != nil {
		return Reply{}, err
	}
	if created {
		d.record(ctx, string(in.Channel), "info", "case_created", map[string]any{"external_id": in.ExternalID}, &c.ID)
	}

	msgType := models.MessageTypeText
	if isCommand {
		msgType = models.MessageTypeCommand
	}
	inboundMsg := models.CaseMessage{
		CaseID:      c.ID,
		Sender:      models.SenderUser,
		Content:     text,
		MessageType: msgType,
	}
	if in.NativeMessageID != "" {
		inboundMsg.NativeMessageID = &in.NativeMessageID
	}
	if _, err := d.Store.InsertMessage(ctx, inboundMsg); err != nil {
		return Reply{}, err
	}

	if isCommand {
		return d.handleCommand(ctx, c, cmd, created)
	}
	return d.handleFreeText(ctx, c, text)
}

func (d *Dispatcher) handleCommand(ctx context.Context, c models.SupportCase, cmd Command, created bool) (Reply, error) {
	next, changed := Transition(RoutingOf(c), cmd)
	if changed {
		if err := d.Store.UpdateCaseRouting(ctx, c.ID, next.Status, next.Persona); err != nil {
			return Reply{}, err
		}
		c.Status = next.Status
		c.Persona = next.Persona
		d.record(ctx, string(c.Channel), "info", "routing_changed", map[string]any{
			"command": string(cmd),
			"status":  string(next.Status),
			"persona": string(next.Persona),
		}, &c.ID)
	} else if err := d.Store.TouchCase(ctx, c.ID); err != nil {
		return Reply{}, err
	}

	var text string
	switch cmd {
	case CommandStart:
		text = welcomeTemplate
	case CommandHelp:
		text = helpTemplate
	case CommandStatus:
		text = statusTemplate(c)
	case CommandClose:
		text = closingTemplate
	case CommandCoach:
		text = handoffTemplate
	case CommandExpert:
		text = returnTemplate
	default:
		text = unknownTemplate
	}

	if _, err := d.Store.InsertMessage(ctx, models.CaseMessage{
		CaseID:      c.ID,
		Sender:      models.SenderForPersona(c.Persona),
		Content:     text,
		MessageType: models.MessageTypeSystem,
	}); err != nil {
		return Reply{}, err
	}
	return Reply{Case: c, Text: text, Command: cmd, Created: created}, nil
}

func (d *Dispatcher) handleFreeText(ctx context.Context, c models.SupportCase, text string) (Reply, error) {
	cls := Classify(text)
	if c.CaseType == "" {
		if err := d.Store.SetCaseType(ctx, c.ID, cls.CaseType); err != nil {
			return Reply{}, err
		}
		c.CaseType = cls.CaseType
		d.record(ctx, string(c.Channel), "info", "intent_classified", map[string]any{
			"case_type":         string(cls.CaseType),
			"suggested_persona": string(cls.Persona),
		}, &c.ID)
	}
	if err := d.Store.TouchCase(ctx, c.ID); err != nil {
		return Reply{}, err
	}

	window := d.HistoryWindow
	if window <= 0 || window > 20 {
		window = 20
	}
	stored, err := d.Store.ListRecentMessages(ctx, c.ID, window)
	if err != nil {
		return Reply{}, err
	}
	history := chatHistory(stored, text)

	reply := Reply{Case: c}
	generated, genErr := d.Generator.Reply(ctx, c.Persona, history, text)
	if genErr != nil {
		d.Logger.Warn().Err(genErr).Str("case_id", c.ID).Msg("generation failed, using fallback")
		d.record(ctx, string(c.Channel), "error", "generation_failed", map[string]any{"error": genErr.Error()}, &c.ID)
		generated = FallbackReply(c.Persona)
		reply.Fallback = true
	}
	reply.Text = Truncate(generated, d.maxLen())

	if _, err := d.Store.InsertMessage(ctx, models.CaseMessage{
		CaseID:      c.ID,
		Sender:      models.SenderForPersona(c.Persona),
		Content:     reply.Text,
		MessageType: models.MessageTypeText,
	}); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func (d *Dispatcher) maxLen() int {
	if d.MaxMessageLen > 0 {
		return d.MaxMessageLen
	}
	return DefaultMaxMessageLen
}

// chatHistory converts stored messages to completion roles. The inbound
// message was already logged, so its trailing copy is dropped: the generator
// receives it separately as the user turn.
func chatHistory(stored []models.CaseMessage, inbound string) []ai.ChatMessage {
	var out []ai.ChatMessage
	for _, m := range stored {
		switch m.Sender {
		case models.SenderUser:
			out = append(out, ai.ChatMessage{Role: "user", Content: m.Content})
		case models.SenderSage, models.SenderCoach, models.SenderOperator:
			if m.MessageType == models.MessageTypeSystem {
				continue
			}
			out = append(out, ai.ChatMessage{Role: "assistant", Content: m.Content})
		}
	}
	if n := len(out); n > 0 && out[n-1].Role == "user" && out[n-1].Content == inbound {
		out = out[:n-1]
	}
	return out
}

func (d *Dispatcher) record(ctx context.Context, source, level, key string, payload map[string]any, caseID *string) {
	if d.Telemetry == nil {
		return
	}
	d.Telemetry.Record(ctx, source, level, key, payload, caseID)
}
