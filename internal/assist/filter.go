package assist

import (
	"context"
	"time"
)

// Category values the storefront understands. Free text mentioning anything
// else leaves the category unset.
const (
	CategoryCake   = "cake"
	CategoryPastry = "pastry"
)

const (
	DefaultLimit = 10
	MaxLimit     = 30
)

// Filter is the structured query extracted from a shopper's message.
// Nil pointer fields mean "no constraint". A Filter is request-scoped and
// never cached.
type Filter struct {
	Category   string   `json:"category,omitempty"`
	NameTokens []string `json:"name_contains,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	MinRating  *float64 `json:"min_rating,omitempty"`
	MaxRating  *float64 `json:"max_rating,omitempty"`
	Limit      int      `json:"limit"`
}

// ClampLimit normalizes the result cap into [1, MaxLimit], defaulting when
// unset.
func (f *Filter) ClampLimit() {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
}

// Product is the read-only catalog view the assistant works with.
// AverageRating and TotalRatings are derived by the rating aggregator and are
// zero until Annotate has run.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Specification string    `json:"specification,omitempty"`
	PromoTag      string    `json:"promo_tag,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	CreatedAt     time.Time `json:"created_at"`
}

// Catalog answers product queries, newest first, capped at the predicate's
// limit.
type Catalog interface {
	Query(ctx context.Context, p Predicate) ([]Product, error)
}

// SubcategoryIndex resolves a top-level category to the subcategory ids
// belonging to it.
type SubcategoryIndex interface {
	IDsForCategory(ctx context.Context, category string) ([]int64, error)
}

// OrderRatings exposes historical order ratings (1-5, non-null only) for a
// product. Read-only for the assistant.
type OrderRatings interface {
	ForProduct(ctx context.Context, productID int64) ([]int, error)
}

// TextCompleter is the optional generative backend. Implementations must
// honor ctx cancellation; a nil completer means the lexical extractor is the
// only path.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns free text into a Filter. Implementations never fail: on
// any upstream trouble they degrade to a deterministic parse and report a
// generic explanation string. The catalog snapshot is advisory context for
// generative implementations and may be nil.
type Extractor interface {
	Extract(ctx context.Context, text string, catalog []Product) (Filter, string)
}
