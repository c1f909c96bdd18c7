package agentcfg

import "errors"

var (
	ErrBusinessIDRequired   = errors.New("businessId is required")
	ErrBusinessNameRequired = errors.New("businessName is required")
	ErrWebhookURLRequired   = errors.New("webhookUrl is required")
)

// Config holds the per-business presentation and behavior settings for an
// embeddable widget.
type Config struct {
	BusinessID            string `json:"businessId"`
	BusinessName          string `json:"businessName"`
	AgentID               string `json:"agentId,omitempty"`
	WebhookURL            string `json:"webhookUrl"`
	APIKey                string `json:"apiKey,omitempty"`
	Position              string `json:"position"`
	PrimaryColor          string `json:"primaryColor"`
	SecondaryColor        string `json:"secondaryColor"`
	WelcomeMessage        string `json:"welcomeMessage"`
	Width                 int    `json:"width"`
	Height                int    `json:"height"`
	ShowTimestamp         bool   `json:"showTimestamp"`
	EnableTypingIndicator bool   `json:"enableTypingIndicator"`
	MaxMessages           *int   `json:"maxMessages,omitempty"`
}

// ApplyDefaults fills presentation fields left empty on creation.
func (c *Config) ApplyDefaults() {
	if c.Position == "" {
		c.Position = "bottom-right"
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = "#e75837"
	}
	if c.SecondaryColor == "" {
		c.SecondaryColor = "#745e25"
	}
	if c.WelcomeMessage == "" {
		c.WelcomeMessage = "Welcome! How can I help you today?"
	}
	if c.Width == 0 {
		c.Width = 350
	}
	if c.Height == 0 {
		c.Height = 500
	}
}

// Validate checks the fields a widget cannot function without.
func (c *Config) Validate() error {
	if c.BusinessID == "" {
		return ErrBusinessIDRequired
	}
	if c.BusinessName == "" {
		return ErrBusinessNameRequired
	}
	if c.WebhookURL == "" {
		return ErrWebhookURLRequired
	}
	return nil
}

// Update describes a partial config change; nil fields are left untouched.
type Update struct {
	BusinessName          *string `json:"businessName,omitempty"`
	AgentID               *string `json:"agentId,omitempty"`
	WebhookURL            *string `json:"webhookUrl,omitempty"`
	APIKey                *string `json:"apiKey,omitempty"`
	Position              *string `json:"position,omitempty"`
	PrimaryColor          *string `json:"primaryColor,omitempty"`
	SecondaryColor        *string `json:"secondaryColor,omitempty"`
	WelcomeMessage        *string `json:"welcomeMessage,omitempty"`
	Width                 *int    `json:"width,omitempty"`
	Height                *int    `json:"height,omitempty"`
	ShowTimestamp         *bool   `json:"showTimestamp,omitempty"`
	EnableTypingIndicator *bool   `json:"enableTypingIndicator,omitempty"`
	MaxMessages           *int    `json:"maxMessages,omitempty"`
}

// Apply overlays the non-nil fields onto cfg.
func (u Update) Apply(cfg *Config) {
	if u.BusinessName != nil {
		cfg.BusinessName = *u.BusinessName
	}
	if u.AgentID != nil {
		cfg.AgentID = *u.AgentID
	}
	if u.WebhookURL != nil {
		cfg.WebhookURL = *u.WebhookURL
	}
	if u.APIKey != nil {
		cfg.APIKey = *u.APIKey
	}
	if u.Position != nil {
		cfg.Position = *u.Position
	}
	if u.PrimaryColor != nil {
		cfg.PrimaryColor = *u.PrimaryColor
	}
	if u.SecondaryColor != nil {
		cfg.SecondaryColor = *u.SecondaryColor
	}
	if u.WelcomeMessage != nil {
		cfg.WelcomeMessage = *u.WelcomeMessage
	}
	if u.Width != nil {
		cfg.Width = *u.Width
	}
	if u.Height != nil {
		cfg.Height = *u.Height
	}
	if u.ShowTimestamp != nil {
		cfg.ShowTimestamp = *u.ShowTimestamp
	}
	if u.EnableTypingIndicator != nil {
		cfg.EnableTypingIndicator = *u.EnableTypingIndicator
	}
	if u.MaxMessages != nil {
		cfg.MaxMessages = u.MaxMessages
	}
}
