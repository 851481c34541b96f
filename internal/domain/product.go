package domain

import (
	"fmt"
	"strings"
)

// Product is an immutable catalog record. Created by bulk ingest,
// read-only at query time.
type Product struct {
	ID             string
	UniqID         string
	Name           string
	Category       string // first node of the category tree
	CategoryTree   string
	Brand          string
	RetailPrice    float64
	DiscountPrice  float64 // 0 means "no discount recorded"
	ProductRating  float64 // 0 means "unrated"
	OverallRating  float64
	Images         []string
	Description    string
	ProductURL     string
	Specifications Specifications
}

// Price returns the effective price: the discounted price when present,
// the retail price otherwise.
func (p Product) Price() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.RetailPrice
}

// Rating returns the effective rating: product-level rating wins over
// the overall rating; 0 means unrated.
func (p Product) Rating() float64 {
	if p.ProductRating > 0 {
		return p.ProductRating
	}
	return p.OverallRating
}

// EmbeddingText returns the text blob used for semantic comparison.
func (p Product) EmbeddingText() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.Name, p.Brand, p.Category, p.ProductURL, p.Description} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Validate enforces the ingest invariant: every persisted product has a
// non-empty name, category, brand and a positive retail price.
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProduct)
	}
	if p.Category == "" {
		return fmt.Errorf("%w: empty category (product %q)", ErrInvalidProduct, p.Name)
	}
	if p.Brand == "" {
		return fmt.Errorf("%w: empty brand (product %q)", ErrInvalidProduct, p.Name)
	}
	if p.RetailPrice <= 0 {
		return fmt.Errorf("%w: retail price must be positive (product %q)", ErrInvalidProduct, p.Name)
	}
	return nil
}

// RankedCandidate is a product paired with its semantic similarity to the
// user query. Ephemeral: lives only inside the re-ranking step.
type RankedCandidate struct {
	Product    Product
	Similarity float64
}
