package models

import (
	"encoding/json"
	"time"
)

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelVapi     Channel = "vapi"
)

type CaseType string

const (
	CaseTypeOnboarding CaseType = "onboarding"
	CaseTypeBilling    CaseType = "billing"
	CaseTypeTrust      CaseType = "trust"
	CaseTypeTechnical  CaseType = "technical"
	CaseTypeGeneral    CaseType = "general"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusEscalated Status = "escalated"
	StatusWaiting   Status = "waiting_on_user"
	StatusClosed    Status = "closed"
)

// Persona is one of the two canned response profiles:
// "sage" is the calm subject-matter expert, "coach" the warm onboarding guide.
type Persona string

const (
	PersonaSage  Persona = "sage"
	PersonaCoach Persona = "coach"
)

type Sender string

const (
	SenderUser     Sender = "user"
	SenderSage     Sender = "sage"
	SenderCoach    Sender = "coach"
	SenderSystem   Sender = "system"
	SenderOperator Sender = "operator"
)

func SenderForPersona(p Persona) Sender {
	if p == PersonaCoach {
		return SenderCoach
	}
	return SenderSage
}

type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeCommand MessageType = "command"
	MessageTypeSystem  MessageType = "system_note"
)

type SupportCase struct {
	ID          string    `json:"id"`
	Channel     Channel   `json:"channel"`
	ExternalID  string    `json:"external_id"`
	UserRef     *string   `json:"user_ref,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CaseType    CaseType  `json:"case_type,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Persona     Persona   `json:"persona"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Open reports whether the case is still picked up by identity lookups.
func (c SupportCase) Open() bool {
	return c.Status == StatusActive || c.Status == StatusEscalated
}

type CaseMessage struct {
	ID              string          `json:"id"`
	CaseID          string          `json:"case_id"`
	Sender          Sender          `json:"sender"`
	Content         string          `json:"content"`
	NativeMessageID *string         `json:"native_message_id,omitempty"`
	MessageType     MessageType     `json:"message_type"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TelemetryEvent struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Level     string          `json:"level"`
	EventKey  string          `json:"event_key"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CaseID    *string         `json:"case_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
