package assist

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyQuery is returned when the shopper's message is blank after
// trimming. Handlers map it to a 400.
var ErrEmptyQuery = errors.New("empty query")

// Products the generative extractor sees as grounding context. Intentionally
// larger than MaxLimit so the model knows about more of the menu than a
// single reply can list.
const catalogSnapshotLimit = 40

// Service runs the full pipeline: extract a Filter from free text, resolve
// the category to subcategory ids, query the catalog, annotate ratings,
// apply the rating bounds and compose the reply.
type Service struct {
	extractor     Extractor
	recommender   *Generative // nil on the plain chat path
	catalog       Catalog
	subcategories SubcategoryIndex
	aggregator    *Aggregator
}

// Result is what a chat or assistant handler serializes.
type Result struct {
	Reply       string    `json:"reply"`
	Products    []Product `json:"products"`
	Filters     Filter    `json:"filters"`
	Explanation string    `json:"explanation,omitempty"`
}

// NewService wires the deterministic chat pipeline.
func NewService(catalog Catalog, subcategories SubcategoryIndex, ratings OrderRatings) *Service {
	return &Service{
		extractor:     NewLexical(),
		catalog:       catalog,
		subcategories: subcategories,
		aggregator:    NewAggregator(ratings),
	}
}

// NewAssistantService wires the generative pipeline. The completer may be
// nil; the service then behaves like the deterministic one with a generic
// explanation.
func NewAssistantService(completer TextCompleter, catalog Catalog, subcategories SubcategoryIndex, ratings OrderRatings) *Service {
	gen := NewGenerative(completer, NewLexical())
	return &Service{
		extractor:     gen,
		recommender:   gen,
		catalog:       catalog,
		subcategories: subcategories,
		aggregator:    NewAggregator(ratings),
	}
}

func (s *Service) Respond(ctx context.Context, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	var snapshot []Product
	if s.recommender != nil {
		// Best effort grounding; a failed snapshot just means an
		// unguided prompt.
		snapshot, _ = s.catalog.Query(ctx, Predicate{Limit: catalogSnapshotLimit})
	}

	filter, explanation := s.extractor.Extract(ctx, text, snapshot)
	filter.ClampLimit()

	var subcategoryIDs []int64
	if filter.Category != "" {
		ids, err := s.subcategories.IDsForCategory(ctx, filter.Category)
		if err != nil {
			return nil, err
		}
		// A category with no subcategories can match nothing; skip the
		// catalog round trip entirely.
		if len(ids) == 0 {
			return &Result{
				Reply:       ComposeReply(nil, filter),
				Products:    []Product{},
				Filters:     filter,
				Explanation: explanation,
			}, nil
		}
		subcategoryIDs = ids
	}

	products, err := s.catalog.Query(ctx, BuildPredicate(filter, subcategoryIDs))
	if err != nil {
		return nil, err
	}
	if err := s.aggregator.Annotate(ctx, products); err != nil {
		return nil, err
	}
	products = FilterByRating(products, filter.MinRating, filter.MaxRating)

	if s.recommender != nil && len(products) > 0 {
		if pitch, err := s.recommender.Recommend(ctx, text, products); err == nil {
			explanation = pitch
		}
	}

	if products == nil {
		products = []Product{}
	}
	return &Result{
		Reply:       ComposeReply(products, filter),
		Products:    products,
		Filters:     filter,
		Explanation: explanation,
	}, nil
}
