package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
	"github.com/critterhq/critter-widget/backend/internal/webhook"
)

type stubSender struct{}

func (stubSender) Send(context.Context, string, webhook.Payload) ([]byte, error) {
	return []byte(`{"output":"hi"}`), nil
}

func setup(t *testing.T) (http.Handler, string, string) {
	t.Helper()
	store := agentcfg.NewMemoryStore(agentcfg.Config{
		BusinessID:   "biz-1",
		BusinessName: "Pawsome Pets",
		WebhookURL:   "https://workflows.example.com/hook",
	})
	svc := chatservice.NewService(store, stubSender{})

	sess, welcome, err := svc.CreateSession(context.Background(), "biz-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, sess.ID, welcome.ID
}

func post(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/feedback", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecordFeedbackEndpoint(t *testing.T) {
	router, sessionID, messageID := setup(t)

	rec := post(t, router, map[string]any{
		"sessionId": sessionID,
		"messageId": messageID,
		"rating":    "helpful",
		"comment":   "answered right away",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Success  bool `json:"success"`
		Feedback struct {
			ID         string `json:"id"`
			BusinessID string `json:"businessId"`
		} `json:"feedback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success {
		t.Error("success = false")
	}
	if payload.Feedback.ID == "" {
		t.Error("feedback id not assigned")
	}
	if payload.Feedback.BusinessID != "biz-1" {
		t.Errorf("businessId = %q, want backfilled from session", payload.Feedback.BusinessID)
	}
}

func TestRecordFeedbackEndpointErrors(t *testing.T) {
	router, sessionID, messageID := setup(t)

	rec := post(t, router, map[string]any{
		"messageId": messageID,
		"rating":    "helpful",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing sessionId status = %d, want 400", rec.Code)
	}

	rec = post(t, router, map[string]any{
		"sessionId": sessionID,
		"messageId": messageID,
		"rating":    "five stars",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating status = %d, want 400", rec.Code)
	}

	rec = post(t, router, map[string]any{
		"sessionId": "missing",
		"messageId": messageID,
		"rating":    "helpful",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d, want 404", rec.Code)
	}
}
