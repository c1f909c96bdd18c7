// Package intent maps user utterances to a fixed label set and scores how
// confident the assistant reply looks. Both are deliberate keyword
// heuristics: the tables below are the behavioral contract, not an
// approximation of one.
package intent

import "strings"

// Label is one of the fixed intent categories.
type Label string

const (
	Booking   Label = "booking"
	Pricing   Label = "pricing"
	Hours     Label = "hours"
	Complaint Label = "complaint"
	Services  Label = "services"
	General   Label = "general"
	// Error marks assistant turns produced by the fallback path.
	Error Label = "error"
)

// Ordered rule table; earlier rules shadow later ones on overlapping
// keywords, so the order is load-bearing.
var rules = []struct {
	label    Label
	keywords []string
}{
	{Booking, []string{"book", "appointment", "schedule"}},
	{Pricing, []string{"price", "cost", "how much"}},
	{Hours, []string{"hours", "open", "closed"}},
	{Complaint, []string{"complaint", "problem", "issue"}},
	{Services, []string{"service", "what do you"}},
}

// Classify returns the first label whose keywords appear in the utterance,
// or General when nothing matches. Matching is case-insensitive substring.
func Classify(utterance string) Label {
	lower := strings.ToLower(utterance)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.label
			}
		}
	}
	return General
}
