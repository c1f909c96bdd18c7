package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"

	"github.com/critterhq/critter-widget/backend/internal/analysis/format"
	"github.com/critterhq/critter-widget/backend/internal/analysis/intent"
	"github.com/critterhq/critter-widget/backend/internal/analysis/normalize"
	"github.com/critterhq/critter-widget/backend/internal/analysis/sentiment"
	"github.com/critterhq/critter-widget/backend/internal/logger"
	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	"github.com/critterhq/critter-widget/backend/internal/model/chat"
	"github.com/critterhq/critter-widget/backend/internal/webhook"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMessageRequired  = errors.New("message text is required")
	ErrSendInFlight     = errors.New("a send is already in flight for this session")
	ErrInvalidRating    = errors.New("rating must be helpful or not-helpful")
)

// fallbackText is the only reply end users ever see for a failed turn,
// regardless of which stage failed.
const fallbackText = "I'm sorry, I'm having trouble responding right now. Please try again or contact us directly."

// Send lifecycle per session. One outbound call may be in flight at a time;
// firing Send while Sending is rejected by the state machine rather than by
// UI button state.
const (
	stateIdle    = "Idle"
	stateSending = "Sending"
)

const (
	triggerSend      = "Send"
	triggerSucceeded = "Succeeded"
	triggerFailed    = "Failed"
)

type session struct {
	model chat.Session
	cfg   agentcfg.Config
	fsm   *stateless.StateMachine
}

func newSendFSM() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(stateIdle)
	fsm.Configure(stateIdle).
		Permit(triggerSend, stateSending)
	fsm.Configure(stateSending).
		Permit(triggerSucceeded, stateIdle).
		Permit(triggerFailed, stateIdle)
	return fsm
}

// Reply is what one orchestrated turn hands back to the widget.
type Reply struct {
	MessageID     string         `json:"messageId"`
	Text          string         `json:"text"`
	Content       format.Content `json:"content"`
	Intent        intent.Label   `json:"intent"`
	Confidence    float64        `json:"confidence"`
	RequiresHuman bool           `json:"requiresHuman"`
}

// Service owns conversation state and orchestrates each turn: outbound
// webhook call, response normalization, classification, history append.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session
	messages map[string][]chat.Message
	feedback map[string][]chat.Feedback

	configs agentcfg.Store
	sender  webhook.Sender
}

// NewService wires the in-memory conversation registry to the config store
// and the outbound webhook sender.
func NewService(configs agentcfg.Store, sender webhook.Sender) *Service {
	return &Service{
		sessions: make(map[string]*session),
		messages: make(map[string][]chat.Message),
		feedback: make(map[string][]chat.Feedback),
		configs:  configs,
		sender:   sender,
	}
}

// CreateSession provisions a session for a business and seeds the transcript
// with the configured welcome message.
func (s *Service) CreateSession(ctx context.Context, businessID string) (chat.Session, chat.Message, error) {
	cfg, err := s.configs.Get(ctx, businessID)
	if err != nil {
		if errors.Is(err, agentcfg.ErrNotFound) {
			return chat.Session{}, chat.Message{}, ErrBusinessNotFound
		}
		return chat.Session{}, chat.Message{}, err
	}

	sess := chat.Session{
		ID:         uuid.NewString(),
		UserID:     "user_" + uuid.NewString()[:8],
		BusinessID: businessID,
		CreatedAt:  time.Now().UTC(),
	}
	welcome := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Role:      chat.RoleAssistant,
		Content:   cfg.WelcomeMessage,
		CreatedAt: sess.CreatedAt,
		Metadata:  &chat.Metadata{BusinessID: businessID, SessionID: sess.ID},
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &session{model: sess, cfg: cfg, fsm: newSendFSM()}
	s.messages[sess.ID] = append(make([]chat.Message, 0, 16), welcome)
	s.mu.Unlock()

	return sess, welcome, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return sess.model, nil
}

// LoadTranscript returns a copy of the session's messages in conversational
// order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// LoadFeedback returns a copy of the session's feedback records.
func (s *Service) LoadFeedback(_ context.Context, sessionID string) ([]chat.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]chat.Feedback, len(s.feedback[sessionID]))
	copy(copied, s.feedback[sessionID])
	return copied, nil
}

// RecordFeedback appends a rating. Purely additive: the messageId is taken
// as-is and multiple records per message are allowed.
func (s *Service) RecordFeedback(_ context.Context, sessionID string, fb chat.Feedback) (chat.Feedback, error) {
	if fb.Rating != chat.RatingHelpful && fb.Rating != chat.RatingNotHelpful {
		return chat.Feedback{}, ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return chat.Feedback{}, ErrSessionNotFound
	}

	fb.ID = uuid.NewString()
	if fb.BusinessID == "" {
		fb.BusinessID = sess.model.BusinessID
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	s.feedback[sessionID] = append(s.feedback[sessionID], fb)
	return fb, nil
}

// SendMessage runs one conversation turn. Every failure past the in-flight
// guard resolves to the fixed fallback reply instead of an error: the
// session stays usable and history is never lost.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	if text == "" {
		return Reply{}, ErrMessageRequired
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Reply{}, ErrSessionNotFound
	}

	if err := sess.fsm.Fire(triggerSend); err != nil {
		return Reply{}, ErrSendInFlight
	}

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   text,
		CreatedAt: time.Now().UTC(),
		Metadata: &chat.Metadata{
			BusinessID: sess.model.BusinessID,
			SessionID:  sessionID,
			Sentiment:  string(sentiment.Analyze(text)),
		},
	}
	s.append(sessionID, userMsg)

	payload := webhook.Payload{
		Message:      text,
		UserID:       sess.model.UserID,
		SessionID:    sessionID,
		BusinessID:   sess.model.BusinessID,
		BusinessName: sess.cfg.BusinessName,
		Timestamp:    userMsg.CreatedAt.Format(time.RFC3339),
	}

	body, err := s.sender.Send(ctx, sess.cfg.WebhookURL, payload)
	if err != nil {
		logger.L.Error("webhook call failed", "sessionId", sessionID, "businessId", sess.model.BusinessID, "error", err)
		return s.fallback(sess, sessionID), nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.L.Error("webhook body is not JSON", "sessionId", sessionID, "body", truncate(body), "error", err)
		return s.fallback(sess, sessionID), nil
	}

	responseText, err := normalize.Normalize(raw)
	if err != nil {
		logger.L.Error("webhook response did not match any known shape", "sessionId", sessionID, "body", truncate(body), "error", err)
		return s.fallback(sess, sessionID), nil
	}

	label := intent.Classify(text)
	confidence := intent.Score(text, responseText)
	requiresHuman := intent.RequiresHuman(label, confidence)

	assistantMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   responseText,
		CreatedAt: time.Now().UTC(),
		Metadata: &chat.Metadata{
			BusinessID:    sess.model.BusinessID,
			SessionID:     sessionID,
			Intent:        string(label),
			Confidence:    confidence,
			RequiresHuman: requiresHuman,
		},
	}
	s.append(sessionID, assistantMsg)

	if err := sess.fsm.Fire(triggerSucceeded); err != nil {
		logger.L.Warn("send state machine fire error", "sessionId", sessionID, "error", err)
	}

	return Reply{
		MessageID:     assistantMsg.ID,
		Text:          responseText,
		Content:       format.Format(responseText),
		Intent:        label,
		Confidence:    confidence,
		RequiresHuman: requiresHuman,
	}, nil
}

// fallback appends the fixed error reply and returns the session to Idle.
func (s *Service) fallback(sess *session, sessionID string) Reply {
	msg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   fallbackText,
		CreatedAt: time.Now().UTC(),
		Metadata: &chat.Metadata{
			BusinessID:    sess.model.BusinessID,
			SessionID:     sessionID,
			Intent:        string(intent.Error),
			Confidence:    0,
			RequiresHuman: true,
		},
	}
	s.append(sessionID, msg)

	if err := sess.fsm.Fire(triggerFailed); err != nil {
		logger.L.Warn("send state machine fire error", "sessionId", sessionID, "error", err)
	}

	return Reply{
		MessageID:     msg.ID,
		Text:          fallbackText,
		Content:       format.Format(fallbackText),
		Intent:        intent.Error,
		Confidence:    0,
		RequiresHuman: true,
	}
}

func (s *Service) append(sessionID string, msg chat.Message) {
	s.mu.Lock()
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	s.mu.Unlock()
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
