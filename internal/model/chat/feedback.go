package chat

import "time"

// Rating is the end-user verdict on an assistant message.
type Rating string

const (
	RatingHelpful    Rating = "helpful"
	RatingNotHelpful Rating = "not-helpful"
)

// Feedback records an explicit user rating of an assistant message.
// MessageID is a weak reference: it is accepted as-is and never validated
// against the transcript, and nothing prevents multiple records for the
// same message.
type Feedback struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"messageId"`
	Rating     Rating    `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	BusinessID string    `json:"businessId"`
	CreatedAt  time.Time `json:"createdAt"`
}
