package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	chatuc "github.com/spurshop/storefront/internal/usecase/chat"
	healthuc "github.com/spurshop/storefront/internal/usecase/health"
)

// --- Mocks ---

type mockChat struct {
	reply   chatuc.Reply
	convs   []domain.Conversation
	msgs    []domain.Message
	err     error
	lastReq chatuc.SendRequest
}

func (m *mockChat) Send(_ context.Context, req chatuc.SendRequest) (chatuc.Reply, error) {
	m.lastReq = req
	return m.reply, m.err
}

func (m *mockChat) ListConversations(_ context.Context, _ string) ([]domain.Conversation, error) {
	return m.convs, m.err
}

func (m *mockChat) History(_ context.Context, _, _ string) ([]domain.Message, error) {
	return m.msgs, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(chat ChatService, health HealthService) http.Handler {
	r := chi.NewRouter()
	NewServer(chat, health, zap.NewNop()).Register(r)
	return r
}

// --- Tests ---

func TestSendMessage_OK(t *testing.T) {
	chat := &mockChat{reply: chatuc.Reply{
		SessionID:      "sess-1",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		Envelope: domain.Envelope{
			Message: "Here are some shoes.",
			Data: &domain.EnvelopeData{
				Products: []domain.EnvelopeProduct{{ID: "p1", Name: "Runner", Price: 1999}},
			},
		},
	}}
	router := newTestRouter(chat, &mockHealth{})

	body := `{"message": "find shoes", "sessionId": "sess-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if chat.lastReq.Message != "find shoes" || chat.lastReq.SessionID != "sess-1" {
		t.Errorf("request not forwarded: %+v", chat.lastReq)
	}

	var resp sendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ConversationID != "conv-1" || resp.Message != "Here are some shoes." {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Data == nil || len(resp.Data.Products) != 1 || resp.Data.Products[0].ID != "p1" {
		t.Errorf("products missing from data: %+v", resp.Data)
	}
}

func TestSendMessage_NoStructuredDataIsNull(t *testing.T) {
	chat := &mockChat{reply: chatuc.Reply{
		SessionID:      "sess-1",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		Envelope:       domain.Envelope{Message: "Happy to help."},
	}}
	router := newTestRouter(chat, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":null`) {
		t.Errorf("expected explicit null data: %s", rec.Body.String())
	}
}

func TestSendMessage_BadBody(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != codeBadRequest {
		t.Errorf("expected code %q, got %q", codeBadRequest, resp.Code)
	}
}

func TestSendMessage_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed},
		{"conversation not found", domain.ErrConversationNotFound, http.StatusNotFound, codeNotFound},
		{"completion provider", domain.ErrCompletionProviderError, http.StatusBadGateway, codeProviderError},
		{"search unavailable", domain.ErrSearchUnavailable, http.StatusServiceUnavailable, codeUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockChat{err: tc.err}, &mockHealth{})

			req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(`{"message": "hi"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var resp errorResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Code)
			}
		})
	}
}

func TestSendMessage_UnknownErrorHidesDetails(t *testing.T) {
	router := newTestRouter(&mockChat{err: errors.New("sqlite: disk I/O error at /var/db")}, &mockHealth{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "disk I/O") {
		t.Errorf("internal details leaked: %s", rec.Body.String())
	}
}

func TestListConversations(t *testing.T) {
	chat := &mockChat{convs: []domain.Conversation{
		{ID: "conv-1", Title: "shoes"},
		{ID: "conv-2", Title: "returns"},
	}}
	router := newTestRouter(chat, &mockHealth{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations?sessionId=sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp conversationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].ID != "conv-1" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestListMessages_RequiresSessionID(t *testing.T) {
	router := newTestRouter(&mockChat{}, &mockHealth{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations/conv-1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListMessages_OK(t *testing.T) {
	chat := &mockChat{msgs: []domain.Message{
		{ID: "m1", Sender: domain.SenderUser, Content: "find shoes"},
		{ID: "m2", Sender: domain.SenderAssistant, Content: "Found 2 shoes.",
			Data: &domain.Envelope{Message: "Found 2 shoes."}},
	}}
	router := newTestRouter(chat, &mockHealth{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations/conv-1/messages?sessionId=sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp messageListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Items))
	}
	if resp.Items[1].Data == nil || resp.Items[1].Data.Message != "Found 2 shoes." {
		t.Errorf("envelope missing: %+v", resp.Items[1])
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"catalog": healthuc.CheckOK},
	}}
	router := newTestRouter(&mockChat{}, health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "ok" || resp.Checks["catalog"] != "ok" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"vector": healthuc.CheckError},
	}}
	router := newTestRouter(&mockChat{}, health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
