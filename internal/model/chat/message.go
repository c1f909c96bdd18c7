package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Metadata carries per-message classification computed at send time.
// Assistant messages always carry Intent and Confidence together; error
// replies set intent "error" with confidence 0.
type Metadata struct {
	BusinessID    string  `json:"businessId,omitempty"`
	SessionID     string  `json:"sessionId,omitempty"`
	Sentiment     string  `json:"sentiment,omitempty"`
	Intent        string  `json:"intent,omitempty"`
	Confidence    float64 `json:"confidence"`
	RequiresHuman bool    `json:"requiresHuman,omitempty"`
}

// Message is a single conversation turn. Messages are immutable once
// appended; the session transcript is append-only in conversational order.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}
