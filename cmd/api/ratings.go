package main

import (
	"context"
)

// orderRatings exposes the orders store under the narrower interface the
// assistant's rating aggregator expects.
type orderRatings struct {
	orders interface {
		RatingsForProduct(ctx context.Context, productID int64) ([]int, error)
	}
}

func (a orderRatings) ForProduct(ctx context.Context, productID int64) ([]int, error) {
	return a.orders.RatingsForProduct(ctx, productID)
}
