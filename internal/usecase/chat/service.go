// Package chat orchestrates the conversational pipeline: session and
// conversation resolution, history replay, tool-assisted completion and
// reply assembly.
package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
	"github.com/spurshop/storefront/internal/normalize"
)

// maxToolRounds bounds the tool loop so a model stuck on tool calls
// cannot spin forever.
const maxToolRounds = 4

const maxMessageLen = 10000

// SendRequest is one inbound chat message. SessionID and ConversationID
// are optional; missing ones are created.
type SendRequest struct {
	Message        string
	SessionID      string
	ConversationID string
}

// Reply is the outcome of processing one message.
type Reply struct {
	SessionID      string
	ConversationID string
	MessageID      string
	Envelope       domain.Envelope
}

// Service is the chat orchestrator.
type Service struct {
	completer domain.Completer
	products  ProductSearcher
	policies  PolicyAnswerer
	store     Store
	cfg       Config
}

// New creates a chat service.
func New(completer domain.Completer, products ProductSearcher, policies PolicyAnswerer, store Store, cfg Config) *Service {
	if cfg.MaxProductItems <= 0 {
		cfg.MaxProductItems = 7
	}
	if cfg.MaxKnowledgeItems <= 0 {
		cfg.MaxKnowledgeItems = 5
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	return &Service{completer: completer, products: products, policies: policies, store: store, cfg: cfg}
}

// Send processes a user message end to end and returns the assembled
// assistant reply.
func (s *Service) Send(ctx context.Context, req SendRequest) (Reply, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		return Reply{}, fmt.Errorf("empty message: %w", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		return Reply{}, fmt.Errorf("message exceeds %d characters: %w", maxMessageLen, domain.ErrInvalidArgument)
	}

	session, err := s.store.EnsureSession(ctx, req.SessionID)
	if err != nil {
		return Reply{}, err
	}

	conv, err := s.resolveConversation(ctx, session.ID, req)
	if err != nil {
		return Reply{}, err
	}

	history, err := s.store.ListMessages(ctx, conv.ID, s.cfg.HistoryLimit)
	if err != nil {
		return Reply{}, err
	}

	if _, err := s.store.AppendMessage(ctx, domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderUser,
		Content:        req.Message,
	}); err != nil {
		return Reply{}, err
	}

	envelope := s.generate(ctx, history, req.Message)

	saved, err := s.store.AppendMessage(ctx, domain.Message{
		ConversationID: conv.ID,
		Sender:         domain.SenderAssistant,
		Content:        envelope.Message,
		Data:           &envelope,
	})
	if err != nil {
		return Reply{}, err
	}

	log.Info("chat message processed",
		zap.String("conversation_id", conv.ID),
		zap.Int("products", len(envelope.Products())))

	return Reply{
		SessionID:      session.ID,
		ConversationID: conv.ID,
		MessageID:      saved.ID,
		Envelope:       envelope,
	}, nil
}

// ListConversations returns a session's conversations for the history
// sidebar.
func (s *Service) ListConversations(ctx context.Context, sessionID string) ([]domain.Conversation, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required: %w", domain.ErrInvalidArgument)
	}
	return s.store.ListConversations(ctx, sessionID)
}

// History returns a conversation's messages, verifying session ownership.
func (s *Service) History(ctx context.Context, conversationID, sessionID string) ([]domain.Message, error) {
	if _, err := s.store.GetConversation(ctx, conversationID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID, s.cfg.HistoryLimit)
}

func (s *Service) resolveConversation(ctx context.Context, sessionID string, req SendRequest) (domain.Conversation, error) {
	if req.ConversationID != "" {
		return s.store.GetConversation(ctx, req.ConversationID, sessionID)
	}
	return s.store.CreateConversation(ctx, sessionID, titleFromMessage(req.Message))
}

// generate runs the tool-assisted completion loop and assembles the
// envelope. Completion failures degrade to tool-data fallbacks; the user
// always gets a reply.
func (s *Service) generate(ctx context.Context, history []domain.Message, userMessage string) domain.Envelope {
	log := logger.FromContext(ctx)

	messages := s.transcript(history, userMessage)
	tools := toolDefs()
	var outcome toolOutcome

	var finalText string
	for round := 0; ; round++ {
		result, err := s.completer.Chat(ctx, messages, tools)
		if err != nil {
			log.Warn("chat completion failed", zap.Error(err))
			return fallbackEnvelope(outcome.product, outcome.policy)
		}

		if len(result.ToolCalls) == 0 || round == maxToolRounds {
			finalText = result.Content
			break
		}

		messages = append(messages, domain.ChatMessage{
			Role:      domain.RoleAssistant,
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})
		for _, call := range result.ToolCalls {
			payload := s.runTool(ctx, call, &outcome)
			messages = append(messages, domain.ChatMessage{
				Role:       domain.RoleTool,
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    payload,
			})
		}
	}

	return assemble(finalText, outcome.product, outcome.policy)
}

func (s *Service) transcript(history []domain.Message, userMessage string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})

	for _, msg := range history {
		role := domain.RoleAssistant
		if msg.Sender == domain.SenderUser {
			role = domain.RoleUser
		}
		messages = append(messages, domain.ChatMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: normalize.Query(userMessage),
	})
	return messages
}

// titleFromMessage derives a short conversation title from its first
// message.
func titleFromMessage(message string) string {
	title := strings.TrimSpace(message)
	const maxTitle = 60
	if utf8.RuneCountInString(title) > maxTitle {
		runes := []rune(title)
		title = string(runes[:maxTitle])
	}
	return title
}
