package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"The cake was delicious and fresh!", 2},
		{"Stale bread, very disappointed.", -2},
		{"It arrived on Tuesday.", 0},
		{"Great taste but the delivery was late.", 0},
		{"", 0},
		{"DELICIOUS!", 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Score(tc.text), tc.text)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, LabelPositive, Label(2))
	assert.Equal(t, LabelNegative, Label(-1))
	assert.Equal(t, LabelNeutral, Label(0))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]string{
		"delicious cake, loved it",
		"great service",
		"stale and dry",
		"it was okay",
	})

	assert.Equal(t, 2, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, LabelPositive, s.Overall)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, LabelNeutral, s.Overall)
}
