// Package analytics aggregates a session transcript and its feedback
// records into the metrics the admin dashboard reports.
package analytics

import (
	"fmt"
	"strings"

	"github.com/critterhq/critter-widget/backend/internal/analysis/sentiment"
	"github.com/critterhq/critter-widget/backend/internal/model/chat"
)

// placeholderResponseTime is reported until per-turn latency is measured.
// TODO: derive from consecutive user/assistant message timestamps.
const placeholderResponseTime = 2.5

// Report summarizes one conversation for the dashboard.
type Report struct {
	TotalMessages         int            `json:"totalMessages"`
	AverageResponseTime   float64        `json:"averageResponseTime"`
	SentimentDistribution map[string]int `json:"sentimentDistribution"`
	CommonIntents         map[string]int `json:"commonIntents"`
	SatisfactionScore     float64        `json:"satisfactionScore"`
	EscalationRate        float64        `json:"escalationRate"`
}

// Analyze computes the conversation report. Satisfaction is the helpful
// share of all feedback (0 with no feedback); escalation rate is the share
// of messages flagged for human handoff (0 with no messages). Both are
// percentages.
func Analyze(messages []chat.Message, feedback []chat.Feedback) Report {
	distribution := map[string]int{
		string(sentiment.Positive): 0,
		string(sentiment.Negative): 0,
		string(sentiment.Neutral):  0,
	}
	intents := make(map[string]int)
	escalations := 0

	for _, msg := range messages {
		distribution[string(sentiment.Analyze(msg.Content))]++
		if msg.Metadata != nil {
			if msg.Metadata.Intent != "" {
				intents[msg.Metadata.Intent]++
			}
			if msg.Metadata.RequiresHuman {
				escalations++
			}
		}
	}

	satisfaction := 0.0
	if len(feedback) > 0 {
		helpful := 0
		for _, fb := range feedback {
			if fb.Rating == chat.RatingHelpful {
				helpful++
			}
		}
		satisfaction = float64(helpful) / float64(len(feedback)) * 100
	}

	escalationRate := 0.0
	if len(messages) > 0 {
		escalationRate = float64(escalations) / float64(len(messages)) * 100
	}

	return Report{
		TotalMessages:         len(messages),
		AverageResponseTime:   placeholderResponseTime,
		SentimentDistribution: distribution,
		CommonIntents:         intents,
		SatisfactionScore:     satisfaction,
		EscalationRate:        escalationRate,
	}
}

// ParsedFeedback distills a conversation into follow-up material for the
// business owner.
type ParsedFeedback struct {
	Sentiment   string   `json:"sentiment"`
	Topics      []string `json:"topics"`
	ActionItems []string `json:"actionItems"`
	Urgency     string   `json:"urgency"`
	Summary     string   `json:"summary"`
}

// Fixed order so repeated runs list topics identically.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"booking", []string{"book", "appointment", "schedule", "reserve"}},
	{"pricing", []string{"price", "cost", "fee", "charge", "expensive", "cheap"}},
	{"services", []string{"service", "grooming", "walking", "boarding", "training"}},
	{"staff", []string{"staff", "employee", "worker", "person", "team"}},
	{"quality", []string{"quality", "professional", "clean", "dirty", "good", "bad"}},
	{"timing", []string{"time", "late", "early", "punctual", "schedule", "hours"}},
}

// ParseFeedback derives overall sentiment, discussed topics, action items,
// and an urgency grade from the transcript plus explicit ratings.
func ParseFeedback(messages []chat.Message, feedback []chat.Feedback) ParsedFeedback {
	var all strings.Builder
	for i, msg := range messages {
		if i > 0 {
			all.WriteByte(' ')
		}
		all.WriteString(msg.Content)
	}
	content := all.String()

	overall := sentiment.Analyze(content)
	topics := extractTopics(content)

	return ParsedFeedback{
		Sentiment:   string(overall),
		Topics:      topics,
		ActionItems: actionItems(messages, feedback),
		Urgency:     urgency(messages, feedback),
		Summary:     summary(messages, overall, topics),
	}
}

func extractTopics(content string) []string {
	lower := strings.ToLower(content)
	var topics []string
	for _, entry := range topicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				topics = append(topics, entry.topic)
				break
			}
		}
	}
	return topics
}

func actionItems(messages []chat.Message, feedback []chat.Feedback) []string {
	var items []string

	for _, fb := range feedback {
		if fb.Rating == chat.RatingNotHelpful {
			items = append(items, "Review and improve responses that received negative feedback")
			break
		}
	}

	for _, msg := range messages {
		lower := strings.ToLower(msg.Content)
		if strings.Contains(lower, "manager") || strings.Contains(lower, "human") ||
			(msg.Metadata != nil && msg.Metadata.RequiresHuman) {
			items = append(items, "Follow up on escalation requests")
			break
		}
	}

	for _, msg := range messages {
		if msg.Metadata != nil && msg.Metadata.Intent == "booking" {
			items = append(items, "Ensure booking requests were properly handled")
			break
		}
	}

	return items
}

func urgency(messages []chat.Message, feedback []chat.Feedback) string {
	score := 0
	for _, fb := range feedback {
		if fb.Rating == chat.RatingNotHelpful {
			score += 2
		}
	}
	for _, msg := range messages {
		if msg.Metadata == nil {
			continue
		}
		if msg.Metadata.RequiresHuman {
			score += 3
		}
		if msg.Metadata.Intent == "complaint" {
			score += 2
		}
	}

	switch {
	case score >= 5:
		return "high"
	case score >= 2:
		return "medium"
	default:
		return "low"
	}
}

func summary(messages []chat.Message, overall sentiment.Label, topics []string) string {
	userCount := 0
	assistantCount := 0
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			userCount++
		case chat.RoleAssistant:
			assistantCount++
		}
	}

	text := fmt.Sprintf("Conversation with %d user messages and %d assistant responses. Overall sentiment: %s.",
		userCount, assistantCount, overall)
	if len(topics) > 0 {
		text += fmt.Sprintf(" Main topics discussed: %s.", strings.Join(topics, ", "))
	}
	return text
}
