package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/critterhq/critter-widget/backend/internal/model/chat"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
	"github.com/critterhq/critter-widget/backend/pkg/utils"
)

// Handler ingests end-user ratings of assistant messages.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the feedback handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the feedback route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/feedback", h.handleRecord)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID  string `json:"sessionId"`
		MessageID  string `json:"messageId"`
		Rating     string `json:"rating"`
		Comment    string `json:"comment"`
		BusinessID string `json:"businessId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	fb := chatmodel.Feedback{
		MessageID:  payload.MessageID,
		Rating:     chatmodel.Rating(payload.Rating),
		Comment:    payload.Comment,
		BusinessID: payload.BusinessID,
	}

	recorded, err := h.chatSvc.RecordFeedback(r.Context(), payload.SessionID, fb)
	if err != nil {
		switch {
		case errors.Is(err, chatservice.ErrInvalidRating):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, chatservice.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to record feedback")
		}
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"success":  true,
		"feedback": recorded,
	})
}
