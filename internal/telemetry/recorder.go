package telemetry

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/courseloop/support-backend/internal/models"
)

type Store interface {
	InsertTelemetry(ctx context.Context, e models.TelemetryEvent) error
}

// Recorder writes operational events to the store and mirrors them to the log.
// Telemetry is best-effort: a failed write never fails the request.
type Recorder struct {
	Store  Store
	Logger zerolog.Logger
}

func (r *Recorder) Record(ctx context.Context, source, level, eventKey string, payload map[string]any, caseID *string) {
	evt := r.Logger.Info()
	switch level {
	case "warn":
		evt = r.Logger.Warn()
	case "error", "critical":
		evt = r.Logger.Error()
	}
	evt.Str("source", source).Str("event_key", eventKey).Fields(payload).Msg("telemetry")

	if r.Store == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	if err := r.Store.InsertTelemetry(ctx, models.TelemetryEvent{
		Source:   source,
		Level:    level,
		EventKey: eventKey,
		Payload:  raw,
		CaseID:   caseID,
	}); err != nil {
		r.Logger.Error().Err(err).Str("event_key", eventKey).Msg("telemetry write failed")
	}
}
