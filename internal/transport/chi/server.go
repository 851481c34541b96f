// Package chi exposes the storefront API over HTTP using the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	chatuc "github.com/spurshop/storefront/internal/usecase/chat"
	healthuc "github.com/spurshop/storefront/internal/usecase/health"
)

// Error codes returned in JSON error responses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeProviderError    = "provider_error"
	codeUnavailable      = "service_unavailable"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ChatService is the chat usecase surface the transport consumes.
type ChatService interface {
	Send(ctx context.Context, req chatuc.SendRequest) (chatuc.Reply, error)
	ListConversations(ctx context.Context, sessionID string) ([]domain.Conversation, error)
	History(ctx context.Context, conversationID, sessionID string) ([]domain.Message, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers for the chat API.
type Server struct {
	chat          ChatService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat ChatService, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrConversationNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, codeUnavailable),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/chat/message", s.SendMessage)
	r.Get("/api/chat/conversations", s.ListConversations)
	r.Get("/api/chat/conversations/{conversationID}/messages", s.ListMessages)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type sendMessageRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId"`
	ConversationID string `json:"conversationId"`
}

type sendMessageResponse struct {
	SessionID      string               `json:"sessionId"`
	ConversationID string               `json:"conversationId"`
	MessageID      string               `json:"messageId"`
	Message        string               `json:"message"`
	Data           *domain.EnvelopeData `json:"data"`
}

// SendMessage handles POST /api/chat/message.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reply, err := s.chat.Send(r.Context(), chatuc.SendRequest{
		Message:        req.Message,
		SessionID:      req.SessionID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		SessionID:      reply.SessionID,
		ConversationID: reply.ConversationID,
		MessageID:      reply.MessageID,
		Message:        reply.Envelope.Message,
		Data:           reply.Envelope.Data,
	})
}

type conversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type conversationListResponse struct {
	Items []conversationResponse `json:"items"`
}

// ListConversations handles GET /api/chat/conversations.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	convs, err := s.chat.ListConversations(r.Context(), sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]conversationResponse, len(convs))
	for i, c := range convs {
		items[i] = conversationResponse{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}

	writeJSON(w, http.StatusOK, conversationListResponse{Items: items})
}

type messageResponse struct {
	ID        string           `json:"id"`
	Sender    string           `json:"sender"`
	Content   string           `json:"content"`
	Data      *domain.Envelope `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type messageListResponse struct {
	Items []messageResponse `json:"items"`
}

// ListMessages handles GET /api/chat/conversations/{conversationID}/messages.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	sessionID := r.URL.Query().Get("sessionId")

	if sessionID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "sessionId query parameter is required")
		return
	}

	msgs, err := s.chat.History(r.Context(), conversationID, sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		items[i] = messageResponse{
			ID:        m.ID,
			Sender:    m.Sender,
			Content:   m.Content,
			Data:      m.Data,
			CreatedAt: m.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, messageListResponse{Items: items})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrConversationNotFound,
		domain.ErrSessionNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidProduct,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
