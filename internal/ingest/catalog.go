// Package ingest loads the product catalog from CSV exports and policy
// documents from markdown, preparing both for search.
package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spurshop/storefront/internal/domain"
)

const (
	catalogBatchSize    = 500
	maxDescriptionLen   = 5000
	noRatingPlaceholder = "No rating available"
)

// ProductSink receives validated product batches.
type ProductSink interface {
	BulkInsert(ctx context.Context, items []domain.Product) error
}

// CatalogStats summarizes one catalog ingest run.
type CatalogStats struct {
	Inserted int
	Skipped  int
}

// Catalog parses a catalog CSV export and bulk-inserts valid products.
// Rows missing required fields (uniq id, name, category, brand, positive
// retail price) are skipped and counted, not fatal.
func Catalog(ctx context.Context, r io.Reader, sink ProductSink, logger *zap.Logger) (CatalogStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return CatalogStats{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var stats CatalogStats
	batch := make([]domain.Product, 0, catalogBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.BulkInsert(ctx, batch); err != nil {
			return fmt.Errorf("insert catalog batch: %w", err)
		}
		stats.Inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, not a dead file.
			stats.Skipped++
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		p, ok := productFromRow(field)
		if !ok {
			stats.Skipped++
			continue
		}

		batch = append(batch, p)
		if len(batch) == catalogBatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	logger.Info("catalog ingest completed",
		zap.Int("inserted", stats.Inserted),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

var (
	brandJunkRe  = regexp.MustCompile(`[{}\[\]"]`)
	brandAlnumRe = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// productFromRow maps one CSV record to a catalog product. Returns false
// when a required field is missing or unusable.
func productFromRow(field func(string) string) (domain.Product, bool) {
	uniqID := field("uniq_id")
	name := field("product_name")
	if uniqID == "" || len(name) < 2 {
		return domain.Product{}, false
	}

	retailPrice, err := strconv.ParseFloat(field("retail_price"), 64)
	if err != nil || retailPrice <= 0 {
		return domain.Product{}, false
	}

	categoryTree := field("product_category_tree")
	category := firstCategory(categoryTree)
	if len(category) < 2 {
		return domain.Product{}, false
	}

	brand := cleanBrand(field("brand"))
	if len(brand) < 2 || !brandAlnumRe.MatchString(brand) {
		return domain.Product{}, false
	}

	p := domain.Product{
		UniqID:       uniqID,
		Name:         name,
		Category:     category,
		CategoryTree: categoryTree,
		Brand:        brand,
		RetailPrice:  retailPrice,
		ProductURL:   field("product_url"),
		Images:       parseImages(field("image")),
	}

	if v, err := strconv.ParseFloat(field("discounted_price"), 64); err == nil && v > 0 {
		p.DiscountPrice = v
	}
	if s := field("product_rating"); s != "" && s != noRatingPlaceholder {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			p.ProductRating = v
		}
	}
	if s := field("overall_rating"); s != "" && s != noRatingPlaceholder {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			p.OverallRating = v
		}
	}

	desc := field("description")
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen] + "..."
	}
	p.Description = desc

	if raw := field("product_specifications"); raw != "" {
		p.Specifications = domain.ParseSpecifications(raw)
	}

	return p, p.Validate() == nil
}

// firstCategory extracts the top-level category from the category tree
// column, which is either a JSON array of ">>"-joined paths or a bare
// ">>"-joined path.
func firstCategory(tree string) string {
	if tree == "" {
		return ""
	}

	path := tree
	var parsed []string
	if err := json.Unmarshal([]byte(tree), &parsed); err == nil && len(parsed) > 0 {
		path = parsed[0]
	}

	for _, part := range strings.Split(path, ">>") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

func cleanBrand(brand string) string {
	brand = brandJunkRe.ReplaceAllString(brand, "")
	return strings.Trim(strings.TrimSpace(brand), `"'`)
}

// parseImages accepts either a JSON array of URLs or a single bare URL.
func parseImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err == nil {
		return images
	}
	return []string{raw}
}
