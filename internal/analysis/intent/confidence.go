package intent

import "strings"

// escalationThreshold is the score below which a turn needs a human.
const escalationThreshold = 0.7

// Score estimates answer confidence from simple characteristics of the
// exchange. Starts at 0.8, deducts for short questions and hedging replies,
// and clamps to [0.1, 1.0].
func Score(utterance, responseText string) float64 {
	confidence := 0.8

	if len(utterance) < 10 {
		confidence -= 0.1
	}
	if strings.Contains(responseText, "I don't know") || strings.Contains(responseText, "not sure") {
		confidence -= 0.2
	}
	if strings.Contains(responseText, "contact us directly") {
		confidence -= 0.3
	}

	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// RequiresHuman reports whether the turn should be handed to a human agent:
// low confidence, or any complaint regardless of score.
func RequiresHuman(label Label, score float64) bool {
	return score < escalationThreshold || label == Complaint
}
