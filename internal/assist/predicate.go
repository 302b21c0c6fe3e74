package assist

import (
	"regexp"
	"strings"
)

// Predicate is the storage-level form of a Filter: subcategory ids instead of
// a category name, regex patterns instead of raw tokens. Name patterns are
// POSIX-safe, matched case-insensitively, and ORed together.
type Predicate struct {
	SubcategoryIDs []int64
	NamePatterns   []string
	MinPrice       *float64
	MaxPrice       *float64
	Limit          int
}

// BuildPredicate lowers a Filter onto resolved subcategory ids. Rating bounds
// are deliberately absent: ratings are derived after the query and filtered
// by the aggregator, not by storage.
func BuildPredicate(f Filter, subcategoryIDs []int64) Predicate {
	p := Predicate{
		SubcategoryIDs: subcategoryIDs,
		NamePatterns:   namePatterns(f.NameTokens),
		MinPrice:       f.MinPrice,
		MaxPrice:       f.MaxPrice,
		Limit:          f.Limit,
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// namePatterns builds the ORed name match set: the exact phrase plus the
// tokens in order with anything between. A lone token is its own substring
// pattern; individual words of a longer phrase never match on their own.
func namePatterns(tokens []string) []string {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	quoted := make([]string, len(cleaned))
	for i, t := range cleaned {
		quoted[i] = regexp.QuoteMeta(t)
	}
	if len(cleaned) == 1 {
		return []string{quoted[0]}
	}

	return []string{
		regexp.QuoteMeta(strings.Join(cleaned, " ")),
		strings.Join(quoted, ".*"),
	}
}
