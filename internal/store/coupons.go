package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	CouponTypePercent = "percent"
	CouponTypeFlat    = "flat"
)

var (
	ErrDuplicateCoupon = errors.New("a coupon with that code already exists")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponMinOrder  = errors.New("order amount is below the coupon minimum")
)

type Coupon struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Value          float64    `json:"value"`
	MinOrderAmount float64    `json:"min_order_amount"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CouponsStore struct {
	db *pgxpool.Pool
}

func (s *CouponsStore) Create(ctx context.Context, c *Coupon) error {
	query := `
		INSERT INTO coupons (code, type, value, min_order_amount, expires_at, is_active)
		VALUES (UPPER($1), $2, $3, $4, $5, $6)
		RETURNING id, code, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		c.Code, c.Type, c.Value, c.MinOrderAmount, c.ExpiresAt, c.IsActive,
	).Scan(&c.ID, &c.Code, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCoupon
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (s *CouponsStore) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, type, value, min_order_amount, expires_at, is_active, created_at
		FROM coupons
		WHERE code = UPPER($1)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	c := &Coupon{}
	err := s.db.QueryRow(ctx, query, strings.TrimSpace(code)).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderAmount, &c.ExpiresAt, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func (s *CouponsStore) List(ctx context.Context, limit, offset int) ([]Coupon, int, error) {
	query := `
		SELECT id, code, type, value, min_order_amount, expires_at, is_active, created_at,
		       COUNT(*) OVER() AS total_count
		FROM coupons
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var (
		coupons []Coupon
		total   int
	)
	for rows.Next() {
		var c Coupon
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderAmount,
			&c.ExpiresAt, &c.IsActive, &c.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return coupons, total, nil
}

// Update applies a partial update. Zero-valued numeric fields keep their
// current values; a coupon meant to have no minimum is created that way.
func (s *CouponsStore) Update(ctx context.Context, c *Coupon) error {
	query := `
		UPDATE coupons
		SET value = COALESCE(NULLIF($1, 0::numeric), value),
		    min_order_amount = COALESCE(NULLIF($2, 0::numeric), min_order_amount),
		    expires_at = COALESCE($3, expires_at),
		    is_active = $4
		WHERE id = $5
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, query, c.Value, c.MinOrderAmount, c.ExpiresAt, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CouponsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cmd, err := s.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem validates a coupon against an order amount and returns the coupon
// together with the discount it grants. The discount never exceeds the order
// amount.
func (s *CouponsStore) Redeem(ctx context.Context, code string, orderAmount float64) (*Coupon, float64, error) {
	c, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if !c.IsActive {
		return nil, 0, ErrCouponInactive
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, 0, ErrCouponExpired
	}
	if orderAmount < c.MinOrderAmount {
		return nil, 0, ErrCouponMinOrder
	}

	var discount float64
	switch c.Type {
	case CouponTypePercent:
		discount = orderAmount * c.Value / 100
	case CouponTypeFlat:
		discount = c.Value
	default:
		return nil, 0, fmt.Errorf("unknown coupon type %q", c.Type)
	}
	discount = math.Min(math.Round(discount*100)/100, orderAmount)
	return c, discount, nil
}
