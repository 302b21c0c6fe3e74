package assist

import (
	"context"
	"math"
	"sync"
)

// Aggregator derives AverageRating/TotalRatings for product views from
// historical order ratings.
type Aggregator struct {
	ratings OrderRatings
}

func NewAggregator(ratings OrderRatings) *Aggregator {
	return &Aggregator{ratings: ratings}
}

// Annotate fills the rating fields of every product, fanning the lookups out
// concurrently. Each goroutine writes only its own index. The first lookup
// error wins and fails the whole batch.
func (a *Aggregator) Annotate(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := range products {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scores, err := a.ratings.ForProduct(ctx, products[i].ID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			avg, n := meanRating(scores)
			products[i].AverageRating = avg
			products[i].TotalRatings = n
		}(i)
	}
	wg.Wait()
	return firstErr
}

// meanRating averages to one decimal place. No ratings means average 0.
func meanRating(scores []int) (float64, int) {
	if len(scores) == 0 {
		return 0, 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := float64(sum) / float64(len(scores))
	return math.Round(avg*10) / 10, len(scores)
}

// FilterByRating keeps products whose average falls inside the inclusive
// bounds. Nil bounds pass everything through untouched.
func FilterByRating(products []Product, min, max *float64) []Product {
	if min == nil && max == nil {
		return products
	}
	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if min != nil && p.AverageRating < *min {
			continue
		}
		if max != nil && p.AverageRating > *max {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
