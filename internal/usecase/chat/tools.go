package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/logger"
)

const (
	toolSearchProducts = "search_products"
	toolSearchPolicies = "search_policies"
)

var queryArgSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string"}
  },
  "required": ["query"]
}`)

func toolDefs() []domain.ToolDef {
	return []domain.ToolDef{
		{
			Name:        toolSearchProducts,
			Description: "Use ONLY for product discovery, comparison, or recommendations. Read-only.",
			Parameters:  queryArgSchema,
		},
		{
			Name:        toolSearchPolicies,
			Description: "Use ONLY for store policies: shipping, returns, privacy, etc.",
			Parameters:  queryArgSchema,
		},
	}
}

// toolOutcome collects typed tool results across one completion round.
// The assembler reads these instead of re-parsing the JSON handed to
// the model.
type toolOutcome struct {
	product *domain.ProductToolResult
	policy  *domain.PolicyToolResult
}

// runTool executes one tool call and returns the JSON payload for the
// model plus the typed outcome. Unknown tools and bad arguments produce
// an error payload for the model rather than failing the turn.
func (s *Service) runTool(ctx context.Context, call domain.ToolCall, outcome *toolOutcome) string {
	log := logger.FromContext(ctx)

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Query == "" {
		log.Warn("malformed tool arguments",
			zap.String("tool", call.Name), zap.String("arguments", call.Arguments))
		return `{"error": "invalid tool arguments"}`
	}

	switch call.Name {
	case toolSearchProducts:
		result := s.searchProducts(ctx, args.Query)
		outcome.product = &result
		return marshalToolResult(ctx, result)

	case toolSearchPolicies:
		result := s.policies.Answer(ctx, args.Query, s.cfg.MaxKnowledgeItems)
		outcome.policy = &result
		return marshalToolResult(ctx, result)

	default:
		log.Warn("model requested unknown tool", zap.String("tool", call.Name))
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, call.Name)
	}
}

// searchProducts runs the search pipeline and shapes its outcome as a
// product tool result. Search errors degrade to an empty result with an
// unavailability note so a flaky catalog never kills the conversation,
// and an outage is never mistaken for an empty catalog.
func (s *Service) searchProducts(ctx context.Context, query string) domain.ProductToolResult {
	log := logger.FromContext(ctx)

	res, err := s.products.Search(ctx, query, s.cfg.MaxProductItems)
	if err != nil {
		log.Warn("product tool search failed", zap.Error(err))
		return domain.ProductToolResult{
			Type:     domain.ToolResultTypeProduct,
			Summary:  "Product search is currently unavailable. Please try again shortly.",
			Products: []domain.EnvelopeProduct{},
		}
	}

	products := make([]domain.EnvelopeProduct, len(res.Products))
	for i, p := range res.Products {
		products[i] = domain.ToEnvelopeProduct(p)
	}

	summary := "No products found matching your request."
	if len(products) > 0 {
		summary = fmt.Sprintf("Found %d products matching your request.", len(products))
	}

	return domain.ProductToolResult{
		Type:     domain.ToolResultTypeProduct,
		Summary:  summary,
		Products: products,
	}
}

func marshalToolResult(ctx context.Context, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		logger.FromContext(ctx).Error("tool result marshal failed", zap.Error(err))
		return `{"error": "internal tool failure"}`
	}
	return string(data)
}
