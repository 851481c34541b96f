// Package normalize fixes common typos and spelling variations in user
// queries so downstream intent extraction sees canonical words.
package normalize

import "strings"

var typoCorrections = map[string]string{
	// Spelling variations
	"jewellary": "jewellery",
	"jewelry":   "jewellery",
	"jewlery":   "jewellery",
	"jewellry":  "jewellery",
	"jewlry":    "jewellery",

	// Other common typos
	"laptoop":   "laptop",
	"moblie":    "mobile",
	"phne":      "phone",
	"shooes":    "shoes",
	"shose":     "shoes",
	"watchs":    "watches",
	"headfone":  "headphone",
	"headfones": "headphones",
	"earfone":   "earphone",
	"earfones":  "earphones",
	"camra":     "camera",
	"tv":        "television",
	"tvs":       "televisions",

	// Category variations
	"cloths":     "clothing",
	"clothings":  "clothing",
	"footware":   "footwear",
	"electronis": "electronics",
	"electronice": "electronics",
}

var categoryMappings = map[string]string{
	// Jewellery variations
	"jewellery": "jewellery",
	"jewelry":   "jewellery",
	"jewellary": "jewellery",
	"jewlery":   "jewellery",
	"jewellry":  "jewellery",
	"jewlry":    "jewellery",

	// Electronics
	"laptop":     "laptop",
	"laptoop":    "laptop",
	"computer":   "laptop",
	"pc":         "laptop",
	"mobile":     "mobile",
	"moblie":     "mobile",
	"phone":      "mobile",
	"phne":       "mobile",
	"smartphone": "mobile",

	// Footwear
	"shoes":    "footwear",
	"shooes":   "footwear",
	"shose":    "footwear",
	"sneakers": "footwear",
	"boots":    "footwear",
	"sandals":  "footwear",
	"footwear": "footwear",
	"footware": "footwear",

	// Watches
	"watch":      "watch",
	"watchs":     "watch",
	"watches":    "watch",
	"wristwatch": "watch",

	// Audio
	"headphone":  "headphone",
	"headfone":   "headphone",
	"headphones": "headphone",
	"headfones":  "headphone",
	"earphone":   "headphone",
	"earphones":  "headphone",
	"earfone":    "headphone",
	"earfones":   "headphone",

	// Camera
	"camera": "camera",
	"camra":  "camera",
	"cam":    "camera",

	// TV
	"tv":          "tv",
	"television":  "tv",
	"tvs":         "tv",
	"televisions": "tv",

	// Clothing
	"clothing":  "clothing",
	"cloths":    "clothing",
	"clothings": "clothing",
	"clothes":   "clothing",
}

const punctuation = ".,!?;:"

func stripPunctuation(word string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, word)
}

// Query lowercases, trims and corrects typos word by word. Punctuation
// attached to a corrected word is preserved.
func Query(query string) string {
	normalized := strings.TrimSpace(strings.ToLower(query))
	words := strings.Fields(normalized)

	corrected := make([]string, len(words))
	for i, word := range words {
		clean := stripPunctuation(word)
		fixed, ok := typoCorrections[clean]
		if !ok {
			fixed = clean
		}
		if word != clean {
			corrected[i] = strings.Replace(word, clean, fixed, 1)
		} else {
			corrected[i] = fixed
		}
	}

	return strings.Join(corrected, " ")
}

// ExtractCategory returns the canonical category named by the first
// category word in the query, or "" when none matches.
func ExtractCategory(query string) string {
	for _, word := range strings.Fields(Query(query)) {
		if category, ok := categoryMappings[stripPunctuation(word)]; ok {
			return category
		}
	}
	return ""
}
