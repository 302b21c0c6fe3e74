package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingsStub struct {
	scores map[int64][]int
	err    error
}

func (s *ratingsStub) ForProduct(_ context.Context, productID int64) ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores[productID], nil
}

func TestAnnotateComputesMeanAndCount(t *testing.T) {
	agg := NewAggregator(&ratingsStub{scores: map[int64][]int{
		1: {4, 5},
		2: {4, 4, 5},
		3: nil,
	}})
	products := []Product{{ID: 1}, {ID: 2}, {ID: 3}}

	require.NoError(t, agg.Annotate(context.Background(), products))

	assert.Equal(t, 4.5, products[0].AverageRating)
	assert.Equal(t, 2, products[0].TotalRatings)
	assert.Equal(t, 4.3, products[1].AverageRating)
	assert.Equal(t, 3, products[1].TotalRatings)
	assert.Equal(t, 0.0, products[2].AverageRating)
	assert.Equal(t, 0, products[2].TotalRatings)
}

func TestAnnotateEmptySlice(t *testing.T) {
	agg := NewAggregator(&ratingsStub{})
	assert.NoError(t, agg.Annotate(context.Background(), nil))
}

func TestAnnotatePropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	agg := NewAggregator(&ratingsStub{err: boom})
	err := agg.Annotate(context.Background(), []Product{{ID: 1}, {ID: 2}})
	assert.ErrorIs(t, err, boom)
}

func TestMeanRatingRounding(t *testing.T) {
	tests := []struct {
		scores []int
		avg    float64
		count  int
	}{
		{nil, 0, 0},
		{[]int{5}, 5, 1},
		{[]int{4, 5}, 4.5, 2},
		{[]int{3, 3, 4}, 3.3, 3},
		{[]int{2, 3}, 2.5, 2},
	}
	for _, tc := range tests {
		avg, count := meanRating(tc.scores)
		assert.Equal(t, tc.avg, avg)
		assert.Equal(t, tc.count, count)
	}
}

func TestFilterByRating(t *testing.T) {
	products := []Product{
		{ID: 1, AverageRating: 2.5},
		{ID: 2, AverageRating: 4.0},
		{ID: 3, AverageRating: 4.8},
	}

	t.Run("no bounds passes through", func(t *testing.T) {
		assert.Equal(t, products, FilterByRating(products, nil, nil))
	})

	t.Run("min bound is inclusive", func(t *testing.T) {
		kept := FilterByRating(products, fp(4), nil)
		require.Len(t, kept, 2)
		assert.Equal(t, int64(2), kept[0].ID)
		assert.Equal(t, int64(3), kept[1].ID)
	})

	t.Run("exact band", func(t *testing.T) {
		kept := FilterByRating(products, fp(4), fp(4))
		require.Len(t, kept, 1)
		assert.Equal(t, int64(2), kept[0].ID)
	})

	t.Run("max bound only", func(t *testing.T) {
		kept := FilterByRating(products, nil, fp(3))
		require.Len(t, kept, 1)
		assert.Equal(t, int64(1), kept[0].ID)
	})
}
