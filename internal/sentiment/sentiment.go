// Package sentiment scores review comments with a small keyword lexicon.
// It backs the admin dashboard's review summary; it is not a general NLP
// tool.
package sentiment

import "strings"

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "awesome": {},
	"delicious": {}, "tasty": {}, "fresh": {}, "lovely": {}, "perfect": {},
	"best": {}, "wonderful": {}, "yummy": {}, "soft": {}, "moist": {},
	"recommend": {}, "love": {}, "loved": {}, "happy": {}, "fantastic": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "stale": {}, "dry": {},
	"late": {}, "cold": {}, "worst": {}, "disappointed": {}, "disappointing": {},
	"horrible": {}, "burnt": {}, "soggy": {}, "bland": {}, "expensive": {},
	"hate": {}, "hated": {}, "refund": {}, "never": {}, "poor": {},
}

// Score counts positive words minus negative words in the text.
func Score(text string) int {
	score := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, `.,!?;:'"()`)
		if _, ok := positiveWords[tok]; ok {
			score++
		}
		if _, ok := negativeWords[tok]; ok {
			score--
		}
	}
	return score
}

func Label(score int) string {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

type Summary struct {
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
	Overall  string `json:"overall"`
}

// Summarize labels each comment and reports the majority mood. Ties and
// empty input read as neutral.
func Summarize(comments []string) Summary {
	var s Summary
	for _, c := range comments {
		switch Label(Score(c)) {
		case LabelPositive:
			s.Positive++
		case LabelNegative:
			s.Negative++
		default:
			s.Neutral++
		}
	}
	switch {
	case s.Positive > s.Negative:
		s.Overall = LabelPositive
	case s.Negative > s.Positive:
		s.Overall = LabelNegative
	default:
		s.Overall = LabelNeutral
	}
	return s
}
