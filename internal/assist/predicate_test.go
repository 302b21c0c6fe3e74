package assist

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPredicateCategoryOnly(t *testing.T) {
	p := BuildPredicate(Filter{Category: "pastry", Limit: 10}, []int64{4, 5})

	assert.Equal(t, []int64{4, 5}, p.SubcategoryIDs)
	assert.Nil(t, p.NamePatterns)
	assert.Nil(t, p.MinPrice)
	assert.Nil(t, p.MaxPrice)
	assert.Equal(t, 10, p.Limit)
}

func TestBuildPredicateCarriesPriceBounds(t *testing.T) {
	p := BuildPredicate(Filter{MinPrice: fp(100), MaxPrice: fp(400), Limit: 10}, nil)

	assert.Equal(t, 100.0, *p.MinPrice)
	assert.Equal(t, 400.0, *p.MaxPrice)
	assert.Empty(t, p.SubcategoryIDs)
}

func TestBuildPredicateClampsLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, BuildPredicate(Filter{}, nil).Limit)
	assert.Equal(t, MaxLimit, BuildPredicate(Filter{Limit: 99}, nil).Limit)
}

func TestNamePatterns(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{
			name:   "no tokens",
			tokens: nil,
			want:   nil,
		},
		{
			name:   "single word matches anywhere",
			tokens: []string{"chocolate"},
			want:   []string{"chocolate"},
		},
		{
			name:   "multi word gets phrase and in-order sequence only",
			tokens: []string{"red", "velvet"},
			want:   []string{"red velvet", "red.*velvet"},
		},
		{
			name:   "three words stay ordered",
			tokens: []string{"dark", "chocolate", "cake"},
			want:   []string{"dark chocolate cake", "dark.*chocolate.*cake"},
		},
		{
			name:   "metacharacters escaped",
			tokens: []string{"choco (deluxe)"},
			want:   []string{`choco \(deluxe\)`},
		},
		{
			name:   "blank tokens dropped",
			tokens: []string{" ", "eclair", ""},
			want:   []string{"eclair"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, namePatterns(tc.tokens))
		})
	}
}

// A multi-word filter must require every word; a product carrying only one of
// them is not a match under any of the ORed patterns.
func TestNamePatternsRequireAllWords(t *testing.T) {
	patterns := namePatterns([]string{"red", "velvet"})

	matches := func(name string) bool {
		for _, p := range patterns {
			if regexp.MustCompile("(?i)" + p).MatchString(name) {
				return true
			}
		}
		return false
	}

	assert.True(t, matches("Red Velvet Cake"))
	assert.True(t, matches("Red Chocolate Velvet"))
	assert.False(t, matches("Velvet Dream"))
	assert.False(t, matches("Red Fruit Tart"))
}
