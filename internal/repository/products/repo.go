// Package products persists the product catalog in SQLite and executes
// structured catalog queries against it.
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/spurshop/storefront/internal/domain"
)

// effective price and rating expressions shared by filters and sorting.
const (
	priceExpr  = "CASE WHEN discount_price > 0 THEN discount_price ELSE retail_price END"
	ratingExpr = "COALESCE(NULLIF(product_rating, 0), NULLIF(overall_rating, 0), 0)"
)

// Repo is a SQLite-backed catalog repository.
type Repo struct {
	db *sql.DB
}

// New opens the catalog database and initializes its schema.
func New(dataSourceName string) (*Repo, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}

	r := &Repo{db: db}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return r, nil
}

// NewWithDB wraps an existing handle. The caller owns schema setup when
// the handle was not produced by New.
func NewWithDB(db *sql.DB) (*Repo, error) {
	r := &Repo{db: db}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return r, nil
}

// Close releases the database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Ping checks catalog database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping catalog db: %w", err)
	}
	return nil
}

func (r *Repo) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS products (
        id TEXT PRIMARY KEY,
        uniq_id TEXT,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        category_tree TEXT,
        brand TEXT NOT NULL,
        retail_price REAL NOT NULL,
        discount_price REAL DEFAULT 0,
        product_rating REAL DEFAULT 0,
        overall_rating REAL DEFAULT 0,
        images TEXT,
        description TEXT,
        product_url TEXT,
        specifications TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);
    CREATE INDEX IF NOT EXISTS idx_products_brand ON products (brand);
    `
	_, err := r.db.Exec(schema)
	return err
}

// Search executes a structured query against the catalog. The query is
// normalized first, so callers never need to pre-validate limits or sort
// orders.
func (r *Repo) Search(ctx context.Context, q domain.StructuredQuery) ([]domain.Product, error) {
	q = q.Normalize()

	var conditions []string
	var params []any

	if q.Category != "" {
		conditions = append(conditions, "category LIKE ? COLLATE NOCASE")
		params = append(params, "%"+q.Category+"%")
	}
	if q.Brand != "" {
		conditions = append(conditions, "brand LIKE ? COLLATE NOCASE")
		params = append(params, "%"+q.Brand+"%")
	}
	if q.MinPrice > 0 {
		conditions = append(conditions, priceExpr+" >= ?")
		params = append(params, q.MinPrice)
	}
	if q.MaxPrice > 0 {
		conditions = append(conditions, priceExpr+" <= ?")
		params = append(params, q.MaxPrice)
	}
	if q.MinRating > 0 {
		conditions = append(conditions, ratingExpr+" >= ?")
		params = append(params, q.MinRating)
	}
	if q.SearchText != "" {
		conditions = append(conditions, "(name LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)")
		pattern := "%" + q.SearchText + "%"
		params = append(params, pattern, pattern)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
        SELECT id, uniq_id, name, category, category_tree, brand,
               retail_price, discount_price, product_rating, overall_rating,
               images, description, product_url, specifications
        FROM products
        %s
        %s
        LIMIT ?`, whereClause, orderBy(q.SortBy))
	params = append(params, q.Limit)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetByID fetches a single product.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, uniq_id, name, category, category_tree, brand,
               retail_price, discount_price, product_rating, overall_rating,
               images, description, product_url, specifications
        FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

// Count returns the number of catalog records.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// BulkInsert validates and stores a batch of products in one transaction.
// A single invalid record aborts the whole batch.
func (r *Repo) BulkInsert(ctx context.Context, items []domain.Product) error {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
        INSERT OR REPLACE INTO products
            (id, uniq_id, name, category, category_tree, brand,
             retail_price, discount_price, product_rating, overall_rating,
             images, description, product_url, specifications)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare product insert: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		p := items[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		imagesJSON, err := json.Marshal(p.Images)
		if err != nil {
			return fmt.Errorf("marshal images for %q: %w", p.Name, err)
		}
		specsJSON, err := json.Marshal(p.Specifications)
		if err != nil {
			return fmt.Errorf("marshal specifications for %q: %w", p.Name, err)
		}

		if _, err := stmt.ExecContext(ctx,
			p.ID, p.UniqID, p.Name, p.Category, p.CategoryTree, p.Brand,
			p.RetailPrice, p.DiscountPrice, p.ProductRating, p.OverallRating,
			string(imagesJSON), p.Description, p.ProductURL, string(specsJSON),
		); err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog tx: %w", err)
	}
	return nil
}

func orderBy(sortBy string) string {
	switch sortBy {
	case domain.SortPriceAsc:
		return "ORDER BY " + priceExpr + " ASC"
	case domain.SortPriceDesc:
		return "ORDER BY " + priceExpr + " DESC"
	case domain.SortRatingDesc:
		return "ORDER BY " + ratingExpr + " DESC"
	case domain.SortNameAsc:
		return "ORDER BY name ASC"
	case domain.SortNameDesc:
		return "ORDER BY name DESC"
	default:
		return "ORDER BY created_at DESC, rowid DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var uniqID, categoryTree, images, description, productURL, specs sql.NullString
	var discountPrice, productRating, overallRating sql.NullFloat64

	err := row.Scan(
		&p.ID, &uniqID, &p.Name, &p.Category, &categoryTree, &p.Brand,
		&p.RetailPrice, &discountPrice, &productRating, &overallRating,
		&images, &description, &productURL, &specs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("scan product row: %w", err)
	}

	p.UniqID = uniqID.String
	p.CategoryTree = categoryTree.String
	p.Description = description.String
	p.ProductURL = productURL.String
	p.DiscountPrice = discountPrice.Float64
	p.ProductRating = productRating.Float64
	p.OverallRating = overallRating.Float64

	if images.Valid && images.String != "" {
		// a row whose image list never parsed as JSON keeps an empty list
		if err := json.Unmarshal([]byte(images.String), &p.Images); err != nil {
			p.Images = []string{}
		}
	}
	if specs.Valid && specs.String != "" {
		if err := json.Unmarshal([]byte(specs.String), &p.Specifications); err != nil {
			p.Specifications = domain.ParseSpecifications(specs.String)
		}
	}

	return p, nil
}
