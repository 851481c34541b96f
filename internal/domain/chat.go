package domain

import (
	"context"
	"encoding/json"
)

// Chat roles in the completion transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn of a completion transcript.
type ChatMessage struct {
	Role       string
	Content    string
	Name       string // tool name, set on tool result messages
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON arguments
}

// ToolDef describes a function the model may call.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema
}

// ChatResult is the model's reply: assistant text, tool call requests,
// or both.
type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	PromptTokens int
	TotalTokens  int
}

// Completer runs chat completions with optional tool definitions.
type Completer interface {
	Chat(ctx context.Context, messages []ChatMessage, tools []ToolDef) (ChatResult, error)
}
