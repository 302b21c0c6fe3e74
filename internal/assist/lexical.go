package assist

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Lexical is the deterministic, regex-driven extractor. It is the fallback
// for the generative path and the only path for the plain chat endpoint.
//
// Rules run in a fixed order and each rule guards the fields it sets, so a
// later, less specific rule never overwrites an earlier match ("under 400 to
// 800" keeps the 400-800 range, the stray "under" is ignored).
type Lexical struct {
	rules []rule
}

type rule struct {
	name  string
	apply func(f *Filter, text string)
}

var (
	rePriceRange = regexp.MustCompile(`(?i)\b(?:between\s+)?(\d+)\s*(?:-|to|and)\s*(\d+)\b`)
	rePriceMax   = regexp.MustCompile(`(?i)\b(?:under|below|upto|up\s*to|less\s+than|within)\s*(\d+)\b`)
	rePriceMin   = regexp.MustCompile(`(?i)\b(?:above|over|more\s+than|from)\s*(\d+)\b`)

	reRatingOnly  = regexp.MustCompile(`(?i)\bonly\s+(\d)\s*(?:stars?|ratings?|★)`)
	reRatingPlus  = regexp.MustCompile(`(?i)(\d)\s*\+\s*(?:stars?|ratings?|★)`)
	reRatingOpen  = regexp.MustCompile(`(?i)(\d)\s*(?:stars?|ratings?|★)\s*(?:and\s+|or\s+)?(?:above|more|up)\b`)
	reRatingOver  = regexp.MustCompile(`(?i)\b(?:above|over|more\s+than)\s+(\d)\s*(?:stars?|ratings?|★)`)
	reRatingBare  = regexp.MustCompile(`(?i)(\d)\s*(?:stars?|ratings?|★)`)
	reRatingAfter = regexp.MustCompile(`^\s*(?:stars?|ratings?|★|\+)`)

	reNumeric = regexp.MustCompile(`^\d+$`)
)

// Words that precede "cake"/"pastry" without naming a flavor.
var nameStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "some": {}, "any": {}, "my": {}, "your": {},
	"me": {}, "i": {}, "we": {}, "you": {}, "us": {}, "please": {},
	"want": {}, "need": {}, "show": {}, "find": {}, "get": {}, "give": {},
	"buy": {}, "order": {}, "like": {}, "love": {}, "prefer": {}, "suggest": {},
	"for": {}, "with": {}, "of": {}, "and": {}, "or": {}, "to": {}, "in": {},
	"on": {}, "is": {}, "are": {}, "have": {}, "good": {}, "best": {}, "nice": {},
	"fresh": {}, "available": {}, "star": {}, "stars": {}, "rating": {}, "ratings": {},
}

func NewLexical() *Lexical {
	l := &Lexical{}
	l.rules = []rule{
		{name: "category", apply: applyCategory},
		{name: "price-range", apply: applyPriceRange},
		{name: "price-max", apply: applyPriceMax},
		{name: "price-min", apply: applyPriceMin},
		{name: "rating-exact", apply: applyRatingExact},
		{name: "rating-min", apply: applyRatingMin},
		{name: "rating-bare", apply: applyRatingBare},
		{name: "name-token", apply: applyNameToken},
	}
	return l
}

// Parse never fails: signals that are absent simply leave their field unset.
func (l *Lexical) Parse(text string) Filter {
	var f Filter
	lower := strings.ToLower(text)
	for _, r := range l.rules {
		r.apply(&f, lower)
	}
	f.ClampLimit()
	return f
}

// Extract satisfies the Extractor interface. The catalog snapshot is unused
// here; the lexical path needs no grounding.
func (l *Lexical) Extract(_ context.Context, text string, _ []Product) (Filter, string) {
	return l.Parse(text), ""
}

// Cake wins when both categories are mentioned.
func applyCategory(f *Filter, text string) {
	switch {
	case strings.Contains(text, "cake"):
		f.Category = CategoryCake
	case strings.Contains(text, "pastry"), strings.Contains(text, "pastery"):
		f.Category = CategoryPastry
	}
}

func applyPriceRange(f *Filter, text string) {
	m := rePriceRange.FindStringSubmatchIndex(text)
	if m == nil || inRatingContext(text, m[5]) {
		return
	}
	a, errA := strconv.ParseFloat(text[m[2]:m[3]], 64)
	b, errB := strconv.ParseFloat(text[m[4]:m[5]], 64)
	if errA != nil || errB != nil {
		return
	}
	lo, hi := math.Min(a, b), math.Max(a, b)
	f.MinPrice, f.MaxPrice = &lo, &hi
}

func applyPriceMax(f *Filter, text string) {
	if f.MaxPrice != nil {
		return
	}
	m := rePriceMax.FindStringSubmatchIndex(text)
	if m == nil || inRatingContext(text, m[3]) {
		return
	}
	if v, err := strconv.ParseFloat(text[m[2]:m[3]], 64); err == nil {
		f.MaxPrice = &v
	}
}

func applyPriceMin(f *Filter, text string) {
	if f.MinPrice != nil {
		return
	}
	m := rePriceMin.FindStringSubmatchIndex(text)
	if m == nil || inRatingContext(text, m[3]) {
		return
	}
	if v, err := strconv.ParseFloat(text[m[2]:m[3]], 64); err == nil {
		f.MinPrice = &v
	}
}

// "only N star" pins the rating exactly.
func applyRatingExact(f *Filter, text string) {
	if m := reRatingOnly.FindStringSubmatch(text); m != nil {
		if v, ok := ratingValue(m[1]); ok {
			f.MinRating, f.MaxRating = &v, cloneFloat(v)
		}
	}
}

// "N+ star", "N star and above", "above N star" leave the upper bound open.
func applyRatingMin(f *Filter, text string) {
	if f.MinRating != nil {
		return
	}
	for _, re := range []*regexp.Regexp{reRatingPlus, reRatingOpen, reRatingOver} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := ratingValue(m[1]); ok {
				f.MinRating = &v
				return
			}
		}
	}
}

// A bare "N star" means exactly N; the open upper bound requires explicit
// "above"/"+" phrasing.
func applyRatingBare(f *Filter, text string) {
	if f.MinRating != nil || f.MaxRating != nil {
		return
	}
	if m := reRatingBare.FindStringSubmatch(text); m != nil {
		if v, ok := ratingValue(m[1]); ok {
			f.MinRating, f.MaxRating = &v, cloneFloat(v)
		}
	}
}

// The word right before the category token is treated as a flavor hint,
// unless it is numeric or a filler word.
func applyNameToken(f *Filter, text string) {
	if f.Category == "" {
		return
	}
	needles := []string{"cake"}
	if f.Category == CategoryPastry {
		needles = []string{"pastry", "pastery"}
	}
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if i == 0 || !containsAny(tok, needles) {
			continue
		}
		prev := strings.Trim(tokens[i-1], `.,!?;:'"()`)
		if prev == "" || reNumeric.MatchString(prev) {
			return
		}
		if _, stop := nameStopwords[prev]; stop {
			return
		}
		f.NameTokens = []string{prev}
		return
	}
}

// inRatingContext reports whether the text right after a matched number reads
// like a rating phrase, in which case the price rules must leave it alone
// ("above 4 star" is a rating, not a price floor).
func inRatingContext(text string, end int) bool {
	return reRatingAfter.MatchString(text[end:])
}

func ratingValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 1 || v > 5 {
		return 0, false
	}
	return v, true
}

func cloneFloat(v float64) *float64 { return &v }

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
