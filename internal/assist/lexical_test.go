package assist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestLexicalParse(t *testing.T) {
	l := NewLexical()

	tests := []struct {
		name string
		text string
		want Filter
	}{
		{
			name: "category and upper price bound",
			text: "i want cake under 400",
			want: Filter{Category: "cake", MaxPrice: fp(400), Limit: 10},
		},
		{
			name: "category and bare rating is exact",
			text: "show me pastry with 3 star",
			want: Filter{Category: "pastry", MinRating: fp(3), MaxRating: fp(3), Limit: 10},
		},
		{
			name: "flavor token before category",
			text: "chocolate cake please",
			want: Filter{Category: "cake", NameTokens: []string{"chocolate"}, Limit: 10},
		},
		{
			name: "cake wins over pastry",
			text: "cake or pastry, anything works",
			want: Filter{Category: "cake", Limit: 10},
		},
		{
			name: "pastery misspelling",
			text: "fresh pastery",
			want: Filter{Category: "pastry", Limit: 10},
		},
		{
			name: "upper bound only",
			text: "under 250",
			want: Filter{MaxPrice: fp(250), Limit: 10},
		},
		{
			name: "lower bound only",
			text: "anything above 300",
			want: Filter{MinPrice: fp(300), Limit: 10},
		},
		{
			name: "range normalizes order",
			text: "between 800 and 300",
			want: Filter{MinPrice: fp(300), MaxPrice: fp(800), Limit: 10},
		},
		{
			name: "dash range",
			text: "something 300-800",
			want: Filter{MinPrice: fp(300), MaxPrice: fp(800), Limit: 10},
		},
		{
			name: "range beats trailing single bound",
			text: "under 400 to 800",
			want: Filter{MinPrice: fp(400), MaxPrice: fp(800), Limit: 10},
		},
		{
			name: "only N star pins exactly",
			text: "only 5 star cake",
			want: Filter{Category: "cake", MinRating: fp(5), MaxRating: fp(5), Limit: 10},
		},
		{
			name: "star and above leaves max open",
			text: "pastry with 4 star and above",
			want: Filter{Category: "pastry", MinRating: fp(4), Limit: 10},
		},
		{
			name: "plus rating leaves max open",
			text: "4+ rating desserts",
			want: Filter{MinRating: fp(4), Limit: 10},
		},
		{
			name: "above N star is a rating not a price floor",
			text: "above 4 star",
			want: Filter{MinRating: fp(4), Limit: 10},
		},
		{
			name: "price and open rating combine",
			text: "strawberry cake under 400 with 4 star and above",
			want: Filter{Category: "cake", NameTokens: []string{"strawberry"}, MaxPrice: fp(400), MinRating: fp(4), Limit: 10},
		},
		{
			name: "numeric word before category is not a flavor",
			text: "2 cakes",
			want: Filter{Category: "cake", Limit: 10},
		},
		{
			name: "filler word before category is not a flavor",
			text: "show me pastry",
			want: Filter{Category: "pastry", Limit: 10},
		},
		{
			name: "rating out of range ignored",
			text: "9 star cake",
			want: Filter{Category: "cake", Limit: 10},
		},
		{
			name: "no signals at all",
			text: "hello there",
			want: Filter{Limit: 10},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Parse(tc.text))
		})
	}
}

func TestLexicalUpperBoundNeverSetsMin(t *testing.T) {
	f := NewLexical().Parse("pastry under 150")
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 150.0, *f.MaxPrice)
	assert.Nil(t, f.MinPrice)
}

func TestLexicalExtractIgnoresCatalog(t *testing.T) {
	l := NewLexical()
	f, explanation := l.Extract(context.Background(), "cake under 400", []Product{{ID: 1, Name: "x"}})
	assert.Empty(t, explanation)
	assert.Equal(t, l.Parse("cake under 400"), f)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-5, 10},
		{7, 7},
		{30, 30},
		{31, 30},
	}
	for _, tc := range tests {
		f := Filter{Limit: tc.in}
		f.ClampLimit()
		assert.Equal(t, tc.want, f.Limit)
	}
}
