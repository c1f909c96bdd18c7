// Package sentiment labels message text by a keyword-count vote between a
// fixed positive list and a fixed negative list.
package sentiment

import "strings"

// Label is the sentiment verdict for a piece of text.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

var positiveWords = []string{
	"great", "excellent", "amazing", "wonderful", "fantastic", "love", "perfect", "awesome",
}

var negativeWords = []string{
	"terrible", "awful", "horrible", "hate", "worst", "bad", "disappointed", "frustrated",
}

// Analyze counts matches from each list (case-insensitive substring) and
// returns the majority; ties and no-matches are neutral.
func Analyze(content string) Label {
	lower := strings.ToLower(content)

	positive := 0
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	negative := 0
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return Positive
	case negative > positive:
		return Negative
	default:
		return Neutral
	}
}
