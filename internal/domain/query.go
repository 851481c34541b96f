package domain

// Sort orders for catalog search results.
const (
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingDesc = "rating_desc"
	SortNameAsc    = "name_asc"
	SortNameDesc   = "name_desc"
	SortNewest     = "newest"
)

// Query sources: which path produced the structured query.
const (
	QuerySourceLLM      = "llm"
	QuerySourceFallback = "fallback"
)

// DefaultQueryLimit caps result sets when the query does not say otherwise.
const DefaultQueryLimit = 20

// StructuredQuery is the filter contract between intent extraction and
// catalog search. Zero values mean "no constraint".
type StructuredQuery struct {
	SearchText string  `json:"searchText,omitempty"`
	Category   string  `json:"category,omitempty"`
	Brand      string  `json:"brand,omitempty"`
	MinPrice   float64 `json:"minPrice,omitempty"`
	MaxPrice   float64 `json:"maxPrice,omitempty"`
	MinRating  float64 `json:"minRating,omitempty"`
	SortBy     string  `json:"sortBy,omitempty"`
	Limit      int     `json:"limit,omitempty"`

	// Source records which extraction path built the query.
	// Not part of the filter semantics.
	Source string `json:"-"`
}

// Normalize fills defaults and clamps out-of-range values so downstream
// consumers never see a limit of zero or an unknown sort order.
func (q StructuredQuery) Normalize() StructuredQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultQueryLimit
	}
	switch q.SortBy {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNameAsc, SortNameDesc, SortNewest:
	default:
		q.SortBy = SortNewest
	}
	if q.MinPrice < 0 {
		q.MinPrice = 0
	}
	if q.MaxPrice < 0 {
		q.MaxPrice = 0
	}
	if q.MinRating < 0 {
		q.MinRating = 0
	}
	if q.MinRating > 5 {
		q.MinRating = 5
	}
	return q
}

// IsEmpty reports whether the query carries no filter at all.
func (q StructuredQuery) IsEmpty() bool {
	return q.SearchText == "" && q.Category == "" && q.Brand == "" &&
		q.MinPrice == 0 && q.MaxPrice == 0 && q.MinRating == 0
}
