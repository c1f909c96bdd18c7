package chat

import "time"

// Session captures one widget instance's conversation lifetime.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	BusinessID string    `json:"businessId"`
	CreatedAt  time.Time `json:"createdAt"`
}
