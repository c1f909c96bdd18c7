package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critterhq/critter-widget/backend/internal/analysis/intent"
	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	"github.com/critterhq/critter-widget/backend/internal/model/chat"
	"github.com/critterhq/critter-widget/backend/internal/webhook"
)

type mockSender struct {
	SendFunc func(ctx context.Context, url string, payload webhook.Payload) ([]byte, error)
}

func (m *mockSender) Send(ctx context.Context, url string, payload webhook.Payload) ([]byte, error) {
	return m.SendFunc(ctx, url, payload)
}

func testConfig() agentcfg.Config {
	cfg := agentcfg.Config{
		BusinessID:   "biz-1",
		BusinessName: "Pawsome Pets",
		WebhookURL:   "https://workflows.example.com/hook",
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestService(sender webhook.Sender) *Service {
	return NewService(agentcfg.NewMemoryStore(testConfig()), sender)
}

func TestCreateSession(t *testing.T) {
	svc := newTestService(&mockSender{})

	sess, welcome, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "biz-1", sess.BusinessID)
	assert.Len(t, sess.UserID, len("user_")+8)
	assert.Equal(t, chat.RoleAssistant, welcome.Role)
	assert.Equal(t, "Welcome! How can I help you today?", welcome.Content)

	transcript, err := svc.LoadTranscript(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, welcome.ID, transcript[0].ID)
}

func TestCreateSessionUnknownBusiness(t *testing.T) {
	svc := newTestService(&mockSender{})

	_, _, err := svc.CreateSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestSendMessageBookingTurn(t *testing.T) {
	var captured webhook.Payload
	sender := &mockSender{
		SendFunc: func(_ context.Context, url string, payload webhook.Payload) ([]byte, error) {
			captured = payload
			assert.Equal(t, "https://workflows.example.com/hook", url)
			return []byte(`[{"output":"Your appointment details:\n\nDate: June 15"}]`), nil
		},
	}
	svc := newTestService(sender)
	sess, _, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "can I book a grooming appointment")
	require.NoError(t, err)

	assert.Equal(t, "Your appointment details:\n\nDate: June 15", reply.Text)
	assert.Len(t, reply.Content.Lines, 3)
	assert.Equal(t, intent.Booking, reply.Intent)
	assert.InDelta(t, 0.8, reply.Confidence, 1e-9)
	assert.False(t, reply.RequiresHuman)

	assert.Equal(t, "can I book a grooming appointment", captured.Message)
	assert.Equal(t, sess.UserID, captured.UserID)
	assert.Equal(t, sess.ID, captured.SessionID)
	assert.Equal(t, "biz-1", captured.BusinessID)
	assert.Equal(t, "Pawsome Pets", captured.BusinessName)
	_, err = time.Parse(time.RFC3339, captured.Timestamp)
	assert.NoError(t, err)

	transcript, err := svc.LoadTranscript(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 3) // welcome, user, assistant

	userMsg := transcript[1]
	assert.Equal(t, chat.RoleUser, userMsg.Role)
	require.NotNil(t, userMsg.Metadata)
	assert.Equal(t, "neutral", userMsg.Metadata.Sentiment)

	assistantMsg := transcript[2]
	assert.Equal(t, chat.RoleAssistant, assistantMsg.Role)
	assert.Equal(t, reply.MessageID, assistantMsg.ID)
	require.NotNil(t, assistantMsg.Metadata)
	assert.Equal(t, "booking", assistantMsg.Metadata.Intent)
	assert.False(t, assistantMsg.Metadata.RequiresHuman)
}

func TestSendMessageValidation(t *testing.T) {
	svc := newTestService(&mockSender{})
	sess, _, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), sess.ID, "")
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = svc.SendMessage(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendMessageWebhookFailure(t *testing.T) {
	calls := 0
	sender := &mockSender{
		SendFunc: func(context.Context, string, webhook.Payload) ([]byte, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection refused")
			}
			return []byte(`{"output":"hi again"}`), nil
		},
	}
	svc := newTestService(sender)
	sess, _, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "hello there friend")
	require.NoError(t, err)
	assert.Equal(t, fallbackText, reply.Text)
	assert.Equal(t, intent.Error, reply.Intent)
	assert.Zero(t, reply.Confidence)
	assert.True(t, reply.RequiresHuman)

	// Both the user message and the fallback reply survive in history.
	transcript, err := svc.LoadTranscript(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, transcript, 3)
	assert.Equal(t, fallbackText, transcript[2].Content)

	// The session stays usable after a failed turn.
	reply, err = svc.SendMessage(context.Background(), sess.ID, "hello there again")
	require.NoError(t, err)
	assert.Equal(t, "hi again", reply.Text)
}

func TestSendMessageUnrecognizedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":        "<html>gateway timeout</html>",
		"unknown shape":   `{"result":"hi"}`,
		"non-string text": `{"output":42}`,
	} {
		t.Run(name, func(t *testing.T) {
			sender := &mockSender{
				SendFunc: func(context.Context, string, webhook.Payload) ([]byte, error) {
					return []byte(body), nil
				},
			}
			svc := newTestService(sender)
			sess, _, err := svc.CreateSession(context.Background(), "biz-1")
			require.NoError(t, err)

			reply, err := svc.SendMessage(context.Background(), sess.ID, "hello there friend")
			require.NoError(t, err)
			assert.Equal(t, fallbackText, reply.Text)
			assert.True(t, reply.RequiresHuman)
		})
	}
}

func TestSendMessageInFlightGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sender := &mockSender{
		SendFunc: func(context.Context, string, webhook.Payload) ([]byte, error) {
			once.Do(func() { close(entered) })
			<-release
			return []byte(`{"output":"done"}`), nil
		},
	}
	svc := newTestService(sender)
	sess, _, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	done := make(chan Reply, 1)
	go func() {
		reply, err := svc.SendMessage(context.Background(), sess.ID, "slow question here")
		assert.NoError(t, err)
		done <- reply
	}()

	<-entered
	_, err = svc.SendMessage(context.Background(), sess.ID, "impatient follow-up")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	reply := <-done
	assert.Equal(t, "done", reply.Text)

	// Idle again once the first turn resolves.
	reply, err = svc.SendMessage(context.Background(), sess.ID, "one more question")
	require.NoError(t, err)
	assert.Equal(t, "done", reply.Text)
}

func TestRecordFeedback(t *testing.T) {
	svc := newTestService(&mockSender{})
	sess, welcome, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	_, err = svc.RecordFeedback(context.Background(), sess.ID, chat.Feedback{
		MessageID: welcome.ID,
		Rating:    "meh",
	})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.RecordFeedback(context.Background(), "missing", chat.Feedback{
		MessageID: welcome.ID,
		Rating:    chat.RatingHelpful,
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	saved, err := svc.RecordFeedback(context.Background(), sess.ID, chat.Feedback{
		MessageID: welcome.ID,
		Rating:    chat.RatingHelpful,
		Comment:   "great answer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "biz-1", saved.BusinessID)
	assert.False(t, saved.CreatedAt.IsZero())

	// Nothing stops a second record for the same message.
	_, err = svc.RecordFeedback(context.Background(), sess.ID, chat.Feedback{
		MessageID: welcome.ID,
		Rating:    chat.RatingNotHelpful,
	})
	require.NoError(t, err)

	records, err := svc.LoadFeedback(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGetSession(t *testing.T) {
	svc := newTestService(&mockSender{})
	sess, _, err := svc.CreateSession(context.Background(), "biz-1")
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
