package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Blog struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type BlogsStore struct {
	db *pgxpool.Pool
}

func (s *BlogsStore) Create(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, content, author, cover_image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query, b.Title, b.Content, b.Author, b.CoverImageURL).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

func (s *BlogsStore) GetByID(ctx context.Context, id int64) (*Blog, error) {
	query := `
		SELECT id, title, content, author, cover_image_url, created_at, updated_at
		FROM blogs
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	b := &Blog{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Content, &b.Author, &b.CoverImageURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return b, nil
}

func (s *BlogsStore) List(ctx context.Context, limit, offset int) ([]Blog, int, error) {
	query := `
		SELECT id, title, content, author, cover_image_url, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM blogs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var (
		blogs []Blog
		total int
	)
	for rows.Next() {
		var b Blog
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Content, &b.Author, &b.CoverImageURL,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return blogs, total, nil
}

func (s *BlogsStore) Update(ctx context.Context, b *Blog) error {
	query := `
		UPDATE blogs
		SET title = COALESCE(NULLIF($1, ''), title),
		    content = COALESCE(NULLIF($2, ''), content),
		    author = COALESCE(NULLIF($3, ''), author),
		    cover_image_url = COALESCE($4, cover_image_url),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query, b.Title, b.Content, b.Author, b.CoverImageURL, b.ID).
		Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update blog: %w", err)
	}
	return nil
}

func (s *BlogsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
