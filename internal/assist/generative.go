package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	extractionTimeout = 3 * time.Second
	recommendTimeout  = 5 * time.Second

	// Shown when the model produced nothing usable and the deterministic
	// parse took over.
	genericExplanation = "Matched your request against the catalog using keyword rules."
)

// Generative extracts filters by asking a text-completion model, grounded on
// a snapshot of the live catalog. Every failure mode (nil completer, timeout,
// transport error, malformed output) degrades silently to the lexical parse;
// callers never see an error from Extract.
type Generative struct {
	completer TextCompleter
	fallback  *Lexical
}

func NewGenerative(completer TextCompleter, fallback *Lexical) *Generative {
	if fallback == nil {
		fallback = NewLexical()
	}
	return &Generative{completer: completer, fallback: fallback}
}

// modelFilter is the JSON shape the prompt asks the model to emit. Numbers
// are decoded as any because models drift between 400, "400" and 400.0.
type modelFilter struct {
	Category    string   `json:"category"`
	NameContain []string `json:"name_contains"`
	MinPrice    any      `json:"min_price"`
	MaxPrice    any      `json:"max_price"`
	MinRating   any      `json:"min_rating"`
	MaxRating   any      `json:"max_rating"`
	Explanation string   `json:"explanation"`
}

func (g *Generative) Extract(ctx context.Context, text string, catalog []Product) (Filter, string) {
	if g.completer == nil {
		return g.fallback.Parse(text), genericExplanation
	}

	cctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	raw, err := g.completer.Complete(cctx, extractionPrompt(text, catalog))
	if err != nil {
		return g.fallback.Parse(text), genericExplanation
	}

	f, explanation, ok := parseModelFilter(raw)
	if !ok {
		return g.fallback.Parse(text), genericExplanation
	}
	f.ClampLimit()
	if explanation == "" {
		explanation = genericExplanation
	}
	return f, explanation
}

// Recommend asks the model for a short pitch over the matched products. It is
// strictly best effort: on any failure the caller keeps the explanation it
// already has.
func (g *Generative) Recommend(ctx context.Context, text string, products []Product) (string, error) {
	if g.completer == nil {
		return "", fmt.Errorf("no completion backend configured")
	}
	if len(products) == 0 {
		return "", fmt.Errorf("nothing to recommend")
	}
	cctx, cancel := context.WithTimeout(ctx, recommendTimeout)
	defer cancel()

	out, err := g.completer.Complete(cctx, recommendPrompt(text, products))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(stripFences(out))
	if out == "" {
		return "", fmt.Errorf("empty recommendation")
	}
	return out, nil
}

func extractionPrompt(text string, catalog []Product) string {
	var b strings.Builder
	b.WriteString("You extract product filters for a bakery storefront.\n")
	b.WriteString("Reply with ONE JSON object and nothing else, shaped as:\n")
	b.WriteString(`{"category":"cake|pastry|","name_contains":["word"],"min_price":null,"max_price":null,"min_rating":null,"max_rating":null,"explanation":"one sentence"}`)
	b.WriteString("\nRules: category must be \"cake\", \"pastry\" or \"\". Prices are numbers in rupees. Ratings are 1 to 5. Use null for anything the shopper did not ask for.\n")
	if len(catalog) > 0 {
		b.WriteString("Current catalog:\n")
		for _, p := range catalog {
			fmt.Fprintf(&b, "- id=%d name=%q category=%s price=%s rating=%s\n",
				p.ID, p.Name, p.Category, formatAmount(p.Price), formatAmount(p.AverageRating))
		}
	}
	b.WriteString("Shopper message: ")
	b.WriteString(strconv.Quote(text))
	return b.String()
}

func recommendPrompt(text string, products []Product) string {
	top := products
	if len(top) > 5 {
		top = top[:5]
	}
	var b strings.Builder
	b.WriteString("You are a friendly bakery assistant. In at most three sentences, recommend from these products. Plain text only, no markdown.\n")
	for _, p := range top {
		fmt.Fprintf(&b, "- %s (%s, ₹%s, rated %s)\n", p.Name, p.Category, formatAmount(p.Price), formatAmount(p.AverageRating))
	}
	b.WriteString("Shopper message: ")
	b.WriteString(strconv.Quote(text))
	return b.String()
}

// parseModelFilter tolerates the usual model sloppiness: markdown fences,
// prose around the object, stringified numbers. It fails closed so the caller
// can fall back.
func parseModelFilter(raw string) (Filter, string, bool) {
	body, ok := firstJSONObject(stripFences(raw))
	if !ok {
		return Filter{}, "", false
	}
	var mf modelFilter
	if err := json.Unmarshal([]byte(body), &mf); err != nil {
		return Filter{}, "", false
	}

	var f Filter
	switch strings.ToLower(strings.TrimSpace(mf.Category)) {
	case CategoryCake:
		f.Category = CategoryCake
	case CategoryPastry, "pastery", "pastries":
		f.Category = CategoryPastry
	}
	for _, tok := range mf.NameContain {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			f.NameTokens = append(f.NameTokens, tok)
		}
	}
	f.MinPrice = asAmount(mf.MinPrice, 0, 0)
	f.MaxPrice = asAmount(mf.MaxPrice, 0, 0)
	f.MinRating = asAmount(mf.MinRating, 1, 5)
	f.MaxRating = asAmount(mf.MaxRating, 1, 5)
	return f, strings.TrimSpace(mf.Explanation), true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced top-level {...} in s, skipping
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// asAmount coerces a decoded JSON value into a bounded *float64. A zero
// lo/hi pair means "non-negative, no upper bound".
func asAmount(v any, lo, hi float64) *float64 {
	var n float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		n = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n < 0 {
		return nil
	}
	if hi > 0 && (n < lo || n > hi) {
		return nil
	}
	return &n
}
