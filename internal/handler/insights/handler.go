package insights

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/critterhq/critter-widget/backend/internal/analytics"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
	"github.com/critterhq/critter-widget/backend/pkg/utils"
)

// Handler serves conversation analytics to the admin dashboard.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the insights handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the analytics route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/analytics", h.handleAnalytics)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	feedback, err := h.chatSvc.LoadFeedback(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"analytics": analytics.Analyze(messages, feedback),
		"parsed":    analytics.ParseFeedback(messages, feedback),
	})
}
