package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateSubcategory = errors.New("a subcategory with that name already exists")

// Subcategory groups products under one of the two storefront categories,
// cake or pastry.
type Subcategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SubcategoriesStore struct {
	db *pgxpool.Pool
}

func (s *SubcategoriesStore) Create(ctx context.Context, sc *Subcategory) error {
	query := `
		INSERT INTO subcategories (name, category, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query, sc.Name, sc.Category, sc.ImageURL).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSubcategory
		}
		return fmt.Errorf("create subcategory: %w", err)
	}
	return nil
}

func (s *SubcategoriesStore) List(ctx context.Context) ([]Subcategory, error) {
	query := `
		SELECT id, name, category, image_url, created_at
		FROM subcategories
		ORDER BY category, name
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var out []Subcategory
	for rows.Next() {
		var sc Subcategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Category, &sc.ImageURL, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *SubcategoriesStore) Update(ctx context.Context, sc *Subcategory) error {
	query := `
		UPDATE subcategories
		SET name = COALESCE(NULLIF($1, ''), name),
		    category = COALESCE(NULLIF($2, ''), category),
		    image_url = COALESCE($3, image_url)
		WHERE id = $4
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, query, sc.Name, sc.Category, sc.ImageURL, sc.ID)
	if err != nil {
		return fmt.Errorf("update subcategory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SubcategoriesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("subcategory has products: %w", ErrConflict)
		}
		return fmt.Errorf("delete subcategory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IDsForCategory resolves a top-level category to its subcategory ids. An
// unknown category simply yields an empty set.
func (s *SubcategoriesStore) IDsForCategory(ctx context.Context, category string) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT id FROM subcategories WHERE category = $1`, category)
	if err != nil {
		return nil, fmt.Errorf("subcategory ids for category: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subcategory id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}
