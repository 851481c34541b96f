package domain

// Envelope is the assistant reply payload returned to the client: a chat
// message plus a structured data half. A reply with no structured payload
// serializes data as an explicit null.
type Envelope struct {
	Message string        `json:"message"`
	Data    *EnvelopeData `json:"data"`
}

// EnvelopeData is the structured half of a reply.
type EnvelopeData struct {
	Products []EnvelopeProduct `json:"products,omitempty"`
	Sources  []string          `json:"sources,omitempty"`
}

// Products returns the structured product cards, tolerating a nil data
// half.
func (e Envelope) Products() []EnvelopeProduct {
	if e.Data == nil {
		return nil
	}
	return e.Data.Products
}

// Sources returns the policy source list, tolerating a nil data half.
func (e Envelope) Sources() []string {
	if e.Data == nil {
		return nil
	}
	return e.Data.Sources
}

// EnvelopeProduct is the client-facing product card.
type EnvelopeProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Brand      string  `json:"brand,omitempty"`
	Category   string  `json:"category,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	ProductURL string  `json:"productUrl,omitempty"`
}

// ToEnvelopeProduct projects a catalog record onto its client-facing card.
func ToEnvelopeProduct(p Product) EnvelopeProduct {
	return EnvelopeProduct{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price(),
		Brand:      p.Brand,
		Category:   p.Category,
		Rating:     p.Rating(),
		ProductURL: p.ProductURL,
	}
}

// Tool result type tags embedded in tool outputs handed back to the LLM.
const (
	ToolResultTypeProduct = "product_response"
	ToolResultTypePolicy  = "policy_response"
)

// ProductToolResult is the typed outcome of a product search tool call.
type ProductToolResult struct {
	Type     string            `json:"type"`
	Summary  string            `json:"summary"`
	Products []EnvelopeProduct `json:"products"`
}

// PolicyToolResult is the typed outcome of a policy lookup tool call.
type PolicyToolResult struct {
	Type    string   `json:"type"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}
