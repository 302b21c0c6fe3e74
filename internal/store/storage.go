package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakehouse/internal/assist"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Products interface {
		Create(context.Context, *Product) error
		GetByID(context.Context, int64) (*Product, error)
		List(ctx context.Context, subcategoryID int64, limit, offset int) ([]Product, int, error)
		Update(context.Context, *Product) error
		Delete(context.Context, int64) error
		Query(ctx context.Context, p assist.Predicate) ([]assist.Product, error)
		SetImageURLs(ctx context.Context, productID int64, urls []string) error
	}
	Subcategories interface {
		Create(context.Context, *Subcategory) error
		List(context.Context) ([]Subcategory, error)
		Update(context.Context, *Subcategory) error
		Delete(context.Context, int64) error
		IDsForCategory(ctx context.Context, category string) ([]int64, error)
	}
	Orders interface {
		Create(context.Context, *Order) error
		GetByID(context.Context, int64) (*Order, error)
		ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error)
		List(ctx context.Context, status string, limit, offset int) ([]Order, int, error)
		UpdateStatus(ctx context.Context, orderID int64, status string) error
		Rate(ctx context.Context, orderID, userID int64, rating int, comment string) error
		RatingsForProduct(ctx context.Context, productID int64) ([]int, error)
		ReviewComments(ctx context.Context, limit int) ([]string, error)
		DashboardStats(ctx context.Context) (*DashboardStats, error)
	}
	Coupons interface {
		Create(context.Context, *Coupon) error
		GetByCode(context.Context, string) (*Coupon, error)
		List(ctx context.Context, limit, offset int) ([]Coupon, int, error)
		Update(context.Context, *Coupon) error
		Delete(context.Context, int64) error
		Redeem(ctx context.Context, code string, orderAmount float64) (*Coupon, float64, error)
	}
	Blogs interface {
		Create(context.Context, *Blog) error
		GetByID(context.Context, int64) (*Blog, error)
		List(ctx context.Context, limit, offset int) ([]Blog, int, error)
		Update(context.Context, *Blog) error
		Delete(context.Context, int64) error
	}
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		List(ctx context.Context, limit, offset int) ([]User, int, error)
		SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
}

func NewStorage(db *pgxpool.Pool, orderRefSalt string) Storage {
	return Storage{
		Products:      &ProductsStore{db},
		Subcategories: &SubcategoriesStore{db},
		Orders:        NewOrdersStore(db, orderRefSalt),
		Coupons:       &CouponsStore{db},
		Blogs:         &BlogsStore{db},
		Users:         &UsersStore{db},
	}
}

func withTx(db *pgxpool.Pool, ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
