package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/courseloop/support-backend/internal/ai"
	"github.com/courseloop/support-backend/internal/channels/telegram"
	"github.com/courseloop/support-backend/internal/channels/vapi"
	"github.com/courseloop/support-backend/internal/dispatch"
	"github.com/courseloop/support-backend/internal/http/middleware"
	"github.com/courseloop/support-backend/internal/models"
)

type memStore struct {
	cases    []models.SupportCase
	messages []models.CaseMessage
	seq      int
}

func (s *memStore) FindOpenCase(ctx context.Context, channel models.Channel, externalID string) (models.SupportCase, bool, error) {
	for i := len(s.cases) - 1; i >= 0; i-- {
		c := s.cases[i]
		if c.Channel == channel && c.ExternalID == externalID && c.Open() {
			return c, true, nil
		}
	}
	return models.SupportCase{}, false, nil
}

func (s *memStore) CreateCase(ctx context.Context, channel models.Channel, externalID, displayName string) (models.SupportCase, error) {
	s.seq++
	c := models.SupportCase{
		ID:         fmt.Sprintf("case-%d", s.seq),
		Channel:    channel,
		ExternalID: externalID,
		Priority:   models.PriorityNormal,
		Status:     models.StatusActive,
		Persona:    models.PersonaSage,
		CreatedAt:  time.Unix(int64(s.seq), 0).UTC(),
	}
	s.cases = append(s.cases, c)
	return c, nil
}

func (s *memStore) UpdateCaseRouting(ctx context.Context, caseID string, status models.Status, persona models.Persona) error {
	for i := range s.cases {
		if s.cases[i].ID == caseID {
			s.cases[i].Status = status
			s.cases[i].Persona = persona
		}
	}
	return nil
}

func (s *memStore) SetCaseType(ctx context.Context, caseID string, caseType models.CaseType) error {
	for i := range s.cases {
		if s.cases[i].ID == caseID && s.cases[i].CaseType == "" {
			s.cases[i].CaseType = caseType
		}
	}
	return nil
}

func (s *memStore) TouchCase(ctx context.Context, caseID string) error { return nil }

func (s *memStore) InsertMessage(ctx context.Context, m models.CaseMessage) (models.CaseMessage, error) {
	s.seq++
	m.ID = fmt.Sprintf("msg-%d", s.seq)
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *memStore) ListRecentMessages(ctx context.Context, caseID string, limit int) ([]models.CaseMessage, error) {
	var out []models.CaseMessage
	for _, m := range s.messages {
		if m.CaseID == caseID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeSender struct {
	sent []string
	fail bool
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string) error {
	if f.fail {
		return errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestRouter(store dispatch.Store, gen ai.Generator, sender telegram.Sender, tgSecret, vapiSecret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	h := &Handler{
		Dispatcher: &dispatch.Dispatcher{
			Store:         store,
			Generator:     gen,
			Logger:        logger,
			HistoryWindow: 20,
		},
		Telegram:  sender,
		Validator: validator.New(),
		Logger:    logger,
	}
	r := gin.New()
	r.POST("/webhooks/telegram", middleware.SharedSecret(telegram.SecretHeader, tgSecret, logger), h.TelegramWebhook)
	r.POST("/webhooks/vapi", middleware.SharedSecret(vapi.SecretHeader, vapiSecret, logger), h.VapiWebhook)
	return r
}

func post(t *testing.T, r *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const telegramStart = `{"update_id":1,"message":{"message_id":10,"text":"start","chat":{"id":42,"type":"private"},"from":{"id":7,"first_name":"Lena"}}}`

func TestTelegramWebhookRejectsBadSecret(t *testing.T) {
	r := newTestRouter(&memStore{}, ai.MockGenerator{}, &fakeSender{}, "s3cret", "")
	w := post(t, r, "/webhooks/telegram", telegramStart, map[string]string{telegram.SecretHeader: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHORIZED") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestTelegramWebhookMissingSecretConfigProceeds(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, &fakeSender{}, "", "")
	w := post(t, r, "/webhooks/telegram", telegramStart, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.cases) != 1 {
		t.Fatalf("expected one case, got %d", len(store.cases))
	}
}

func TestTelegramWebhookStartFlow(t *testing.T) {
	store := &memStore{}
	sender := &fakeSender{}
	r := newTestRouter(store, ai.MockGenerator{}, sender, "s3cret", "")

	w := post(t, r, "/webhooks/telegram", telegramStart, map[string]string{telegram.SecretHeader: "s3cret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "Sage") {
		t.Fatalf("expected a welcome delivery, got %v", sender.sent)
	}
	if len(store.messages) != 2 {
		t.Fatalf("expected inbound + welcome rows, got %d", len(store.messages))
	}
}

func TestTelegramWebhookInvalidJSON(t *testing.T) {
	r := newTestRouter(&memStore{}, ai.MockGenerator{}, &fakeSender{}, "", "")
	w := post(t, r, "/webhooks/telegram", `{"update_id":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTelegramWebhookMissingChatIdentity(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, &fakeSender{}, "", "")
	body := `{"update_id":1,"message":{"message_id":10,"text":"hello","chat":{"id":0,"type":"private"}}}`
	w := post(t, r, "/webhooks/telegram", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.cases) != 0 || len(store.messages) != 0 {
		t.Fatalf("no rows should be created on validation failure")
	}
}

func TestTelegramWebhookIgnoresNonMessageUpdates(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, &fakeSender{}, "", "")
	w := post(t, r, "/webhooks/telegram", `{"update_id":5}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if len(store.cases) != 0 {
		t.Fatalf("no case should be created")
	}
}

func TestTelegramWebhookDeliveryFailureStill200(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, &fakeSender{fail: true}, "", "")
	w := post(t, r, "/webhooks/telegram", telegramStart, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite delivery failure, got %d", w.Code)
	}
	// The reply is still logged even though delivery failed.
	if len(store.messages) != 2 {
		t.Fatalf("expected 2 message rows, got %d", len(store.messages))
	}
}

func TestTelegramWebhookGenerationFailureStill200(t *testing.T) {
	store := &memStore{}
	sender := &fakeSender{}
	r := newTestRouter(store, ai.MockGenerator{Fail: true}, sender, "", "")
	body := `{"update_id":2,"message":{"message_id":11,"text":"my lesson will not load","chat":{"id":42,"type":"private"}}}`
	w := post(t, r, "/webhooks/telegram", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(sender.sent) != 1 || sender.sent[0] == "" {
		t.Fatalf("expected a non-empty fallback delivery, got %v", sender.sent)
	}
	if sender.sent[0] != dispatch.FallbackReply(models.PersonaSage) {
		t.Fatalf("unexpected fallback text: %q", sender.sent[0])
	}
}

func TestVapiWebhookRejectsBadSecret(t *testing.T) {
	r := newTestRouter(&memStore{}, ai.MockGenerator{}, nil, "", "v-secret")
	body := `{"message":{"type":"transcript","role":"user","transcript":"hello","call":{"id":"call-1"}}}`
	w := post(t, r, "/webhooks/vapi", body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestVapiWebhookMissingCallIdentity(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, nil, "", "")
	w := post(t, r, "/webhooks/vapi", `{"message":{"type":"transcript","role":"user","transcript":"hello"}}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(store.cases) != 0 {
		t.Fatalf("no case should be created")
	}
}

func TestVapiWebhookUserTranscript(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, nil, "", "v-secret")
	body := `{"message":{"type":"transcript","role":"user","transcript":"I was charged twice","call":{"id":"call-1","customer":{"name":"Omar"}}}}`
	w := post(t, r, "/webhooks/vapi", body, map[string]string{vapi.SecretHeader: "v-secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "reply") {
		t.Fatalf("expected a reply in the body: %s", w.Body.String())
	}
	if len(store.cases) != 1 || store.cases[0].CaseType != models.CaseTypeBilling {
		t.Fatalf("expected one billing-tagged case, got %+v", store.cases)
	}
}

func TestVapiWebhookAssistantTranscriptIgnored(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, nil, "", "")
	body := `{"message":{"type":"transcript","role":"assistant","transcript":"how can I help?","call":{"id":"call-1"}}}`
	w := post(t, r, "/webhooks/vapi", body, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ignored") {
		t.Fatalf("expected ignored ack, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.cases) != 0 {
		t.Fatalf("no case should be created")
	}
}

func TestVapiWebhookFunctionCallEchoesResult(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store, ai.MockGenerator{}, nil, "", "")
	body := `{"message":{"type":"function-call","call":{"id":"call-2"},"functionCall":{"name":"ask_support","parameters":{"message":"where is my invoice"}}}}`
	w := post(t, r, "/webhooks/vapi", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "result") {
		t.Fatalf("expected a structured function result: %s", w.Body.String())
	}
}
