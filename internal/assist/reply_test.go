package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeReplySingular(t *testing.T) {
	reply := ComposeReply([]Product{{Name: "Strawberry Delight"}}, Filter{})
	assert.Equal(t, "Here is 1 option I found for you: Strawberry Delight.", reply)
}

func TestComposeReplyPlural(t *testing.T) {
	reply := ComposeReply([]Product{
		{Name: "Red Velvet"},
		{Name: "Black Forest"},
		{Name: "Tiramisu"},
	}, Filter{})
	assert.Equal(t, "Here are 3 options I found for you: Red Velvet, Black Forest, Tiramisu.", reply)
}

func TestComposeReplyListsOnlyFirstThree(t *testing.T) {
	reply := ComposeReply([]Product{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"},
	}, Filter{})
	assert.Equal(t, "Here are 5 options I found for you: A, B, C.", reply)
}

func TestComposeReplyEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name:   "no constraints",
			filter: Filter{},
			want:   "I couldn't find any products. Please try adjusting your filters.",
		},
		{
			name:   "category only",
			filter: Filter{Category: "cake"},
			want:   "I couldn't find any cakes. Please try adjusting your filters.",
		},
		{
			name:   "pastry with upper bound",
			filter: Filter{Category: "pastry", MaxPrice: fp(200)},
			want:   "I couldn't find any pastries under ₹200. Please try adjusting your filters.",
		},
		{
			name:   "price range",
			filter: Filter{Category: "cake", MinPrice: fp(300), MaxPrice: fp(800)},
			want:   "I couldn't find any cakes between ₹300 and ₹800. Please try adjusting your filters.",
		},
		{
			name:   "lower bound with exact rating",
			filter: Filter{MinPrice: fp(500), MinRating: fp(4), MaxRating: fp(4)},
			want:   "I couldn't find any products above ₹500 with 4 star. Please try adjusting your filters.",
		},
		{
			name:   "open rating bound",
			filter: Filter{Category: "cake", MinRating: fp(4)},
			want:   "I couldn't find any cakes with 4 star and above. Please try adjusting your filters.",
		},
		{
			name:   "fractional price prints cleanly",
			filter: Filter{MaxPrice: fp(99.5)},
			want:   "I couldn't find any products under ₹99.5. Please try adjusting your filters.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComposeReply(nil, tc.filter))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "400", formatAmount(400))
	assert.Equal(t, "4.5", formatAmount(4.5))
	assert.Equal(t, "0", formatAmount(0))
}
