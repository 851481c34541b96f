package chat

import (
	"context"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/usecase/search"
)

// ProductSearcher runs the product search pipeline for the product tool.
type ProductSearcher interface {
	Search(ctx context.Context, query string, limit int) (search.Result, error)
}

// PolicyAnswerer answers store policy questions for the policy tool.
// Total: failures surface as apology answers, never errors.
type PolicyAnswerer interface {
	Answer(ctx context.Context, query string, limit int) domain.PolicyToolResult
}

// Store persists sessions, conversations and messages.
type Store interface {
	EnsureSession(ctx context.Context, id string) (domain.Session, error)
	CreateConversation(ctx context.Context, sessionID, title string) (domain.Conversation, error)
	GetConversation(ctx context.Context, id, sessionID string) (domain.Conversation, error)
	ListConversations(ctx context.Context, sessionID string) ([]domain.Conversation, error)
	AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

// Config bounds the chat pipeline.
type Config struct {
	MaxProductItems   int
	MaxKnowledgeItems int
	HistoryLimit      int
}
