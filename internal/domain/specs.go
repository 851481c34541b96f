package domain

import (
	"encoding/json"
	"regexp"
	"strings"
)

// SpecEntry is a single product specification row. Key may be empty for
// value-only entries in the source data.
type SpecEntry struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Specifications is the parsed product specification table.
type Specifications []SpecEntry

var (
	rubyArrowRe = regexp.MustCompile(`"\s*=>\s*`)
	rubyNilRe   = regexp.MustCompile(`=>\s*nil\b`)
)

// ParseSpecifications parses a specification blob from the catalog dump.
// The dump mixes JSON with Ruby hash literals ("key"=>"value", nil), so a
// repair pass runs before the second decode attempt. Blobs that survive
// neither decode are kept verbatim as a single value-only entry.
func ParseSpecifications(raw string) Specifications {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if specs, ok := decodeSpecifications(raw); ok {
		return specs
	}

	repaired := rubyNilRe.ReplaceAllString(raw, `=>null`)
	repaired = rubyArrowRe.ReplaceAllString(repaired, `": `)
	if specs, ok := decodeSpecifications(repaired); ok {
		return specs
	}

	return Specifications{{Value: raw}}
}

func decodeSpecifications(s string) (Specifications, bool) {
	var wrapper struct {
		ProductSpecification []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"product_specification"`
	}
	if err := json.Unmarshal([]byte(s), &wrapper); err != nil {
		return nil, false
	}
	specs := make(Specifications, 0, len(wrapper.ProductSpecification))
	for _, row := range wrapper.ProductSpecification {
		if row.Key == "" && row.Value == "" {
			continue
		}
		specs = append(specs, SpecEntry{Key: row.Key, Value: row.Value})
	}
	return specs, true
}

// String renders the table as "Key: Value" lines for embedding text and
// LLM context.
func (s Specifications) String() string {
	var b strings.Builder
	for i, entry := range s {
		if i > 0 {
			b.WriteString("\n")
		}
		if entry.Key != "" {
			b.WriteString(entry.Key)
			b.WriteString(": ")
		}
		b.WriteString(entry.Value)
	}
	return b.String()
}
