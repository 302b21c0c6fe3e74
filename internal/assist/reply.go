package assist

import (
	"fmt"
	"strconv"
	"strings"
)

// ComposeReply renders the storefront chat answer for a result set. The
// wording is part of the product surface and is pinned by tests: singular and
// plural differ, at most three names are listed, and the no-result message
// names the constraints that were active.
func ComposeReply(products []Product, f Filter) string {
	switch n := len(products); {
	case n == 0:
		return emptyReply(f)
	case n == 1:
		return fmt.Sprintf("Here is 1 option I found for you: %s.", products[0].Name)
	default:
		names := make([]string, 0, 3)
		for i, p := range products {
			if i == 3 {
				break
			}
			names = append(names, p.Name)
		}
		return fmt.Sprintf("Here are %d options I found for you: %s.", n, strings.Join(names, ", "))
	}
}

func emptyReply(f Filter) string {
	var b strings.Builder
	b.WriteString("I couldn't find any ")
	switch f.Category {
	case CategoryCake:
		b.WriteString("cakes")
	case CategoryPastry:
		b.WriteString("pastries")
	default:
		b.WriteString("products")
	}

	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		fmt.Fprintf(&b, " between ₹%s and ₹%s", formatAmount(*f.MinPrice), formatAmount(*f.MaxPrice))
	case f.MaxPrice != nil:
		fmt.Fprintf(&b, " under ₹%s", formatAmount(*f.MaxPrice))
	case f.MinPrice != nil:
		fmt.Fprintf(&b, " above ₹%s", formatAmount(*f.MinPrice))
	}

	switch {
	case f.MinRating != nil && f.MaxRating != nil && *f.MinRating == *f.MaxRating:
		fmt.Fprintf(&b, " with %s star", formatAmount(*f.MinRating))
	case f.MinRating != nil:
		fmt.Fprintf(&b, " with %s star and above", formatAmount(*f.MinRating))
	case f.MaxRating != nil:
		fmt.Fprintf(&b, " with up to %s star", formatAmount(*f.MaxRating))
	}

	b.WriteString(". Please try adjusting your filters.")
	return b.String()
}

// formatAmount prints 400 as "400" and 4.5 as "4.5", never "400.000000".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
