package querybuilder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spurshop/storefront/internal/domain"
	"github.com/spurshop/storefront/internal/normalize"
)

type pricePattern struct {
	re         *regexp.Regexp
	multiplier float64
}

// Patterns are ordered: "k" suffixed forms must win over their bare
// counterparts, so "under 20k" reads 20000 and not 20.
var maxPricePatterns = []pricePattern{
	{regexp.MustCompile(`(?i)under\s+(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)below\s+(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)less\s+than\s+(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)under\s+(\d+)`), 1},
	{regexp.MustCompile(`(?i)below\s+(\d+)`), 1},
	{regexp.MustCompile(`(?i)less\s+than\s+(\d+)`), 1},
	{regexp.MustCompile(`(?i)(\d+)\s*k\s+rupees`), 1000},
	{regexp.MustCompile(`(?i)(\d+)\s+rupees`), 1},
	{regexp.MustCompile(`(?i)₹\s*(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)₹\s*(\d+)`), 1},
}

var minPricePatterns = []pricePattern{
	{regexp.MustCompile(`(?i)above\s+(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)more\s+than\s+(\d+)\s*k`), 1000},
	{regexp.MustCompile(`(?i)above\s+(\d+)`), 1},
	{regexp.MustCompile(`(?i)more\s+than\s+(\d+)`), 1},
}

var rangeRe = regexp.MustCompile(`(?i)(\d+)\s*(k?)\s*to\s*(\d+)\s*k`)

type categoryKeywords struct {
	category string
	keywords []string
}

var categoryTable = []categoryKeywords{
	{"laptop", []string{"laptop", "notebook", "laptops"}},
	{"mobile", []string{"mobile", "phone", "smartphone", "phones"}},
	{"clothing", []string{"clothing", "clothes", "apparel", "wear"}},
	{"electronics", []string{"electronics", "electronic", "device"}},
	{"furniture", []string{"furniture", "sofa", "chair", "table"}},
	{"footwear", []string{"footwear", "shoes", "sneakers", "boots"}},
	{"watch", []string{"watch", "watches", "timepiece"}},
	{"camera", []string{"camera", "cameras", "dslr"}},
	{"tv", []string{"tv", "television", "televisions"}},
	{"headphone", []string{"headphone", "headphones", "earphone", "earphones"}},
}

var commonBrands = []string{
	"samsung", "apple", "nike", "adidas", "sony", "lg", "hp", "dell",
	"canon", "nikon", "bose", "jbl", "philips", "panasonic", "whirlpool",
	"oneplus", "xiaomi", "realme", "oppo", "vivo", "motorola",
}

var (
	priceTokenRe  = regexp.MustCompile(`(?i)\d+\s*k?\s*(rupees|rs)?`)
	priceVerbRe   = regexp.MustCompile(`(?i)under|below|less\s+than|above|more\s+than`)
	ratingWordsRe = regexp.MustCompile(`(?i)\b(best|top|high\s+rating)\b`)
	wordRe        = regexp.MustCompile(`[a-z0-9]+`)
)

// queryWords tokenizes a lowercased message into its word set. Keyword
// matching is whole-word: "laptop" must not trigger "top", nor
// "earphones" trigger "phones".
func queryWords(lower string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(lower, -1) {
		words[w] = true
	}
	return words
}

// buildWithRegex extracts a structured query with pattern matching alone.
// A range mention ("10k to 20k") overrides any single-sided bound matched
// earlier in the same message.
func buildWithRegex(userQuery string) domain.StructuredQuery {
	q := domain.StructuredQuery{
		Limit:  domain.DefaultQueryLimit,
		SortBy: domain.SortNewest,
	}

	lower := strings.ToLower(userQuery)

	for _, p := range maxPricePatterns {
		if m := p.re.FindStringSubmatch(userQuery); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				q.MaxPrice = float64(n) * p.multiplier
				break
			}
		}
	}

	for _, p := range minPricePatterns {
		if m := p.re.FindStringSubmatch(userQuery); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				q.MinPrice = float64(n) * p.multiplier
				break
			}
		}
	}

	if m := rangeRe.FindStringSubmatch(userQuery); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[3])
		if errLo == nil && errHi == nil {
			loMult := 1.0
			if m[2] == "k" || m[2] == "K" {
				loMult = 1000
			}
			q.MinPrice = float64(lo) * loMult
			q.MaxPrice = float64(hi) * 1000
		}
	}

	words := queryWords(lower)

	for _, entry := range categoryTable {
		for _, keyword := range entry.keywords {
			if words[keyword] {
				q.Category = entry.category
				break
			}
		}
		if q.Category != "" {
			break
		}
	}
	if q.Category == "" {
		q.Category = normalize.ExtractCategory(userQuery)
	}

	for _, brand := range commonBrands {
		if words[brand] {
			q.Brand = strings.ToUpper(brand[:1]) + brand[1:]
			break
		}
	}

	if ratingWordsRe.MatchString(lower) {
		q.MinRating = 4.0
		q.SortBy = domain.SortRatingDesc
	}

	searchText := priceTokenRe.ReplaceAllString(userQuery, "")
	searchText = priceVerbRe.ReplaceAllString(searchText, "")
	searchText = ratingWordsRe.ReplaceAllString(searchText, "")
	searchText = strings.TrimSpace(searchText)

	if len(searchText) > 3 {
		q.SearchText = searchText
	}

	return q
}
