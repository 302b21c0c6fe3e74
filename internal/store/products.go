package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bakehouse/internal/assist"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateProduct = errors.New("a product with that name already exists in this subcategory")

type Product struct {
	ID            int64     `json:"id"`
	SubcategoryID int64     `json:"subcategory_id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Specification *string   `json:"specification,omitempty"`
	PromoTag      *string   `json:"promo_tag,omitempty"`
	ImageURLs     []string  `json:"image_urls"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductsStore struct {
	db *pgxpool.Pool
}

func (s *ProductsStore) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (subcategory_id, name, price, specification, promo_tag, image_urls, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		p.SubcategoryID, p.Name, p.Price, p.Specification, p.PromoTag, p.ImageURLs, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *ProductsStore) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, subcategory_id, name, price, specification, promo_tag, image_urls, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p := &Product{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SubcategoryID, &p.Name, &p.Price, &p.Specification,
		&p.PromoTag, &p.ImageURLs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductsStore) List(ctx context.Context, subcategoryID int64, limit, offset int) ([]Product, int, error) {
	query := `
		SELECT id, subcategory_id, name, price, specification, promo_tag, image_urls, is_active, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM products
		WHERE ($1 = 0 OR subcategory_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, subcategoryID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products []Product
		total    int
	)
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.SubcategoryID, &p.Name, &p.Price, &p.Specification,
			&p.PromoTag, &p.ImageURLs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return products, total, nil
}

func (s *ProductsStore) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = COALESCE(NULLIF($1, ''), name),
		    price = COALESCE(NULLIF($2, 0::numeric), price),
		    subcategory_id = COALESCE(NULLIF($3, 0::bigint), subcategory_id),
		    specification = COALESCE($4, specification),
		    promo_tag = COALESCE($5, promo_tag),
		    is_active = $6,
		    updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		p.Name, p.Price, p.SubcategoryID, p.Specification, p.PromoTag, p.IsActive, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *ProductsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductsStore) SetImageURLs(ctx context.Context, productID int64, urls []string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx,
		`UPDATE products SET image_urls = $1, updated_at = NOW() WHERE id = $2`, urls, productID)
	if err != nil {
		return fmt.Errorf("set product images: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Query answers the assistant's catalog lookups. Name patterns are matched
// case-insensitively against the product name, ORed; price bounds are
// inclusive. Results come back newest first.
func (s *ProductsStore) Query(ctx context.Context, pred assist.Predicate) ([]assist.Product, error) {
	query := `
		SELECT p.id, p.name, sc.category, p.price, p.specification, p.promo_tag, p.created_at
		FROM products p
		JOIN subcategories sc ON sc.id = p.subcategory_id
		WHERE p.is_active = true
		  AND (cardinality($1::bigint[]) = 0 OR p.subcategory_id = ANY($1))
		  AND (cardinality($2::text[]) = 0 OR p.name ~* ANY($2))
		  AND ($3::numeric IS NULL OR p.price >= $3)
		  AND ($4::numeric IS NULL OR p.price <= $4)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $5
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	limit := pred.Limit
	if limit <= 0 {
		limit = assist.DefaultLimit
	}
	subIDs := pred.SubcategoryIDs
	if subIDs == nil {
		subIDs = []int64{}
	}
	patterns := pred.NamePatterns
	if patterns == nil {
		patterns = []string{}
	}

	rows, err := s.db.Query(ctx, query, subIDs, patterns, pred.MinPrice, pred.MaxPrice, limit)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var out []assist.Product
	for rows.Next() {
		var (
			p        assist.Product
			spec     sql.NullString
			promoTag sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &spec, &promoTag, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		p.Specification = spec.String
		p.PromoTag = promoTag.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
