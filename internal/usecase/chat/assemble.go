package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spurshop/storefront/internal/domain"
)

// llmReply is the union of the JSON shapes the model is asked to emit.
// Fields the model omits stay zero; the assembler fills the gaps from
// tool outcomes.
type llmReply struct {
	Type     string                   `json:"type"`
	Message  string                   `json:"message"`
	Summary  string                   `json:"summary"`
	Answer   string                   `json:"answer"`
	Reason   string                   `json:"reason"`
	Products []domain.EnvelopeProduct `json:"products"`
	Data     *struct {
		Products []domain.EnvelopeProduct `json:"products"`
	} `json:"data"`
}

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// assemble builds the reply envelope from the model's final text and the
// typed tool outcomes. Total over arbitrary input: whatever the model
// produced, the caller gets a well-formed envelope.
func assemble(llmText string, product *domain.ProductToolResult, policy *domain.PolicyToolResult) domain.Envelope {
	trimmed := strings.TrimSpace(llmText)
	if trimmed == "" {
		return fallbackEnvelope(product, policy)
	}

	reply, ok := parseReply(trimmed)
	if !ok {
		// Plain prose with tool context behind it: trust the tool data.
		if product != nil || policy != nil {
			env := fallbackEnvelope(product, policy)
			env.Message = trimmed
			return env
		}
		return domain.Envelope{Message: trimmed}
	}

	message := firstNonEmpty(reply.Message, reply.Summary, reply.Answer, reply.Reason)

	products := reply.Products
	if reply.Data != nil && len(reply.Data.Products) > 0 {
		products = reply.Data.Products
	}
	if len(products) == 0 && product != nil {
		products = product.Products
	}
	products = backfillProducts(products, product)

	var sources []string
	if policy != nil {
		sources = policy.Sources
		if message == "" {
			message = policy.Answer
		}
	}

	if message == "" {
		message = fallbackMessage(product, policy)
	}
	return envelopeWith(message, products, sources)
}

// envelopeWith wraps the structured half only when it has content, so an
// all-prose reply serializes data as null.
func envelopeWith(message string, products []domain.EnvelopeProduct, sources []string) domain.Envelope {
	env := domain.Envelope{Message: message}
	if len(products) > 0 || len(sources) > 0 {
		env.Data = &domain.EnvelopeData{Products: products, Sources: sources}
	}
	return env
}

// backfillProducts restores fields the model tends to drop when echoing
// products, matching tool products by position.
func backfillProducts(products []domain.EnvelopeProduct, product *domain.ProductToolResult) []domain.EnvelopeProduct {
	if len(products) == 0 {
		return nil
	}
	if product == nil {
		return products
	}

	out := make([]domain.EnvelopeProduct, len(products))
	copy(out, products)
	for i := range out {
		if i >= len(product.Products) {
			break
		}
		src := product.Products[i]
		if out[i].ProductURL == "" {
			out[i].ProductURL = src.ProductURL
		}
		if out[i].ID == "" {
			out[i].ID = src.ID
		}
	}
	return out
}

func fallbackEnvelope(product *domain.ProductToolResult, policy *domain.PolicyToolResult) domain.Envelope {
	var products []domain.EnvelopeProduct
	if product != nil {
		products = product.Products
	}
	var sources []string
	if policy != nil {
		sources = policy.Sources
	}
	return envelopeWith(fallbackMessage(product, policy), products, sources)
}

func fallbackMessage(product *domain.ProductToolResult, policy *domain.PolicyToolResult) string {
	if product != nil {
		if len(product.Products) > 0 {
			return fmt.Sprintf("Found %d products matching your request.", len(product.Products))
		}
		if product.Summary != "" {
			return product.Summary
		}
	}
	if policy != nil && policy.Answer != "" {
		return policy.Answer
	}
	return "Unable to process the request. Please try again."
}

func parseReply(text string) (llmReply, bool) {
	blob := jsonBlockRe.FindString(stripFences(text))
	if blob == "" {
		return llmReply{}, false
	}
	var reply llmReply
	if err := json.Unmarshal([]byte(blob), &reply); err != nil {
		return llmReply{}, false
	}
	return reply, true
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	return strings.ReplaceAll(text, "```", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
