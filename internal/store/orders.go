package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	hashids "github.com/speps/go-hashids/v2"
)

const (
	OrderStatusPlaced    = "placed"
	OrderStatusConfirmed = "confirmed"
	OrderStatusBaking    = "baking"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status transition")
	ErrOrderNotDelivered = errors.New("order has not been delivered yet")
	ErrAlreadyRated      = errors.New("order has already been rated")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// Legal forward transitions. Cancellation is allowed any time before
// delivery.
var statusTransitions = map[string][]string{
	OrderStatusPlaced:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusBaking, OrderStatusCancelled},
	OrderStatusBaking:    {OrderStatusDelivered, OrderStatusCancelled},
}

type Order struct {
	ID            int64     `json:"id"`
	ReferenceCode string    `json:"reference_code"`
	UserID        int64     `json:"user_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Customization *string   `json:"customization,omitempty"`
	Address       string    `json:"address"`
	Price         float64   `json:"price"`
	CouponID      *int64    `json:"coupon_id,omitempty"`
	Status        string    `json:"status"`
	Rating        *int      `json:"rating,omitempty"`
	ReviewComment *string   `json:"review_comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OrdersStore struct {
	db  *pgxpool.Pool
	ref *hashids.HashID
}

func NewOrdersStore(db *pgxpool.Pool, refSalt string) *OrdersStore {
	hd := hashids.NewData()
	hd.Salt = refSalt
	hd.MinLength = 8
	hd.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	h, _ := hashids.NewWithData(hd)
	return &OrdersStore{db: db, ref: h}
}

// referenceCode derives the public order code from the row id, so codes are
// short, unguessable and never collide.
func (s *OrdersStore) referenceCode(orderID int64) string {
	code, err := s.ref.EncodeInt64([]int64{orderID})
	if err != nil {
		return fmt.Sprintf("BKH-%d", orderID)
	}
	return "BKH-" + code
}

func (s *OrdersStore) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO orders (user_id, product_id, quantity, customization, address, price, coupon_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(ctx, insert,
			o.UserID, o.ProductID, o.Quantity, o.Customization, o.Address, o.Price, o.CouponID, OrderStatusPlaced,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		o.Status = OrderStatusPlaced
		o.ReferenceCode = s.referenceCode(o.ID)
		if _, err := tx.Exec(ctx,
			`UPDATE orders SET reference_code = $1 WHERE id = $2`, o.ReferenceCode, o.ID); err != nil {
			return fmt.Errorf("set order reference: %w", err)
		}
		return nil
	})
}

const orderColumns = `
	id, reference_code, user_id, product_id, quantity, customization, address,
	price, coupon_id, status, rating, review_comment, created_at, updated_at
`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.ReferenceCode, &o.UserID, &o.ProductID, &o.Quantity, &o.Customization,
		&o.Address, &o.Price, &o.CouponID, &o.Status, &o.Rating, &o.ReviewComment,
		&o.CreatedAt, &o.UpdatedAt,
	)
}

func (s *OrdersStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	o := &Order{}
	err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrdersStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return s.listOrders(ctx, query, userID, limit, offset)
}

// List returns all orders, optionally filtered to one status. Admin only.
func (s *OrdersStore) List(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return s.listOrders(ctx, query, status, limit, offset)
}

func (s *OrdersStore) listOrders(ctx context.Context, query string, filter any, limit, offset int) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []Order
		total  int
	)
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.ReferenceCode, &o.UserID, &o.ProductID, &o.Quantity, &o.Customization,
			&o.Address, &o.Price, &o.CouponID, &o.Status, &o.Rating, &o.ReviewComment,
			&o.CreatedAt, &o.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return orders, total, nil
}

func (s *OrdersStore) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		allowed := false
		for _, next := range statusTransitions[current] {
			if next == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, current, status)
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
}

// Rate records a 1-5 rating with an optional comment. Only the order's owner
// may rate, only after delivery, and only once.
func (s *OrdersStore) Rate(ctx context.Context, orderID, userID int64, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return withTx(s.db, ctx, func(tx pgx.Tx) error {
		var (
			status   string
			existing *int
		)
		err := tx.QueryRow(ctx,
			`SELECT status, rating FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			orderID, userID).Scan(&status, &existing)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if status != OrderStatusDelivered {
			return ErrOrderNotDelivered
		}
		if existing != nil {
			return ErrAlreadyRated
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET rating = $1, review_comment = NULLIF($2, ''), updated_at = NOW() WHERE id = $3`,
			rating, comment, orderID)
		if err != nil {
			return fmt.Errorf("rate order: %w", err)
		}
		return nil
	})
}

// RatingsForProduct feeds the assistant's rating aggregator.
func (s *OrdersStore) RatingsForProduct(ctx context.Context, productID int64) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx,
		`SELECT rating FROM orders WHERE product_id = $1 AND rating IS NOT NULL`, productID)
	if err != nil {
		return nil, fmt.Errorf("ratings for product: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ratings, nil
}

// ReviewComments returns the most recent non-empty review comments, for the
// dashboard sentiment summary.
func (s *OrdersStore) ReviewComments(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT review_comment FROM orders
		WHERE review_comment IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("review comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return comments, nil
}

type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	DeliveredOrders int     `json:"delivered_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	Revenue         float64 `json:"revenue"`
	AverageRating   float64 `json:"average_rating"`
}

func (s *OrdersStore) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ($1, $2, $3)),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COALESCE(SUM(price) FILTER (WHERE status = $4), 0),
			COALESCE(ROUND(AVG(rating)::numeric, 1), 0)
		FROM orders
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	stats := &DashboardStats{}
	err := s.db.QueryRow(ctx, query,
		OrderStatusPlaced, OrderStatusConfirmed, OrderStatusBaking,
		OrderStatusDelivered, OrderStatusCancelled,
	).Scan(
		&stats.TotalOrders, &stats.PendingOrders, &stats.DeliveredOrders,
		&stats.CancelledOrders, &stats.Revenue, &stats.AverageRating,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}
