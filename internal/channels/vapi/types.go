// Package vapi holds the wire types of the Vapi server-message webhook. The
// reply travels back in the HTTP response body rather than through an
// outbound send call.
package vapi

// SecretHeader carries the shared secret configured on the Vapi assistant.
const SecretHeader = "X-Vapi-Secret"

type Envelope struct {
	Message Message `json:"message"`
}

type Message struct {
	Type         string        `json:"type"`
	Role         string        `json:"role,omitempty"`
	Transcript   string        `json:"transcript,omitempty"`
	Call         *Call         `json:"call,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

type Call struct {
	ID       string    `json:"id"`
	Customer *Customer `json:"customer,omitempty"`
}

type Customer struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}

// FunctionCall is a structured tool invocation from the voice assistant.
type FunctionCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Text extracts the free-text content of the event: the transcript for
// speech, or the message parameter of a tool call.
func (m Message) Text() string {
	if m.FunctionCall != nil {
		if v, ok := m.FunctionCall.Parameters["message"].(string); ok {
			return v
		}
		return ""
	}
	return m.Transcript
}
