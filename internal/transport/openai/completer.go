package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/metrics"
)

// Completer runs chat completions against the OpenAI-compatible API.
// The chat model handles conversations with tools; the query model is a
// cheaper model used for single-shot structured extraction.
type Completer struct {
	client     *openai.Client
	chatModel  string
	queryModel string
	logger     *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	QueryModel string
	Logger     *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	queryModel := cfg.QueryModel
	if queryModel == "" {
		queryModel = cfg.ChatModel
	}

	return &Completer{
		client:     openai.NewClientWithConfig(clientCfg),
		chatModel:  cfg.ChatModel,
		queryModel: queryModel,
		logger:     cfg.Logger,
	}
}

// Chat implements domain.Completer.
func (c *Completer) Chat(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolDef) (domain.ChatResult, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: toAPIMessages(messages),
	}
	for _, tool := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	resp, err := c.complete(ctx, c.chatModel, req)
	if err != nil {
		return domain.ChatResult{}, err
	}

	choice := resp.Choices[0].Message
	result := domain.ChatResult{
		Content:      choice.Content,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	for _, tc := range choice.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

// CompleteText runs a single system+user exchange on the query model and
// returns the raw completion text. Used for structured query extraction.
func (c *Completer) CompleteText(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.queryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.complete(ctx, c.queryModel, req)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Completer) complete(ctx context.Context, model string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return openai.ChatCompletionResponse{}, parseAPIError(err, "completion", domain.ErrCompletionProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(model, "error").Inc()
		return openai.ChatCompletionResponse{}, fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(model).Observe(duration.Seconds())

	return resp, nil
}

func toAPIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		apiMsg := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = apiMsg
	}
	return out
}
