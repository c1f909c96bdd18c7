package agents

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/critterhq/critter-widget/backend/internal/logger"
	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	"github.com/critterhq/critter-widget/backend/pkg/utils"
)

// Handler serves the widget-config CRUD used by the admin dashboard.
type Handler struct {
	store agentcfg.Store
}

// New creates the agents handler.
func New(store agentcfg.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the CRUD routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/agents", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{businessID}", h.handleGet)
		r.Put("/{businessID}", h.handleUpdate)
		r.Delete("/{businessID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.List(r.Context())
	if err != nil {
		logger.L.Error("list agent configs failed", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list agents")
		return
	}
	if configs == nil {
		configs = []agentcfg.Config{}
	}
	utils.RespondJSON(w, http.StatusOK, configs)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var cfg agentcfg.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Create(r.Context(), cfg)
	if err != nil {
		if errors.Is(err, agentcfg.ErrExists) {
			utils.RespondError(w, http.StatusConflict, "agent already exists for this business")
			return
		}
		logger.L.Error("create agent config failed", "businessId", cfg.BusinessID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create agent")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	cfg, err := h.store.Get(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, agentcfg.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "agent not found")
			return
		}
		logger.L.Error("get agent config failed", "businessId", businessID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load agent")
		return
	}
	utils.RespondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	var upd agentcfg.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.store.Update(r.Context(), businessID, upd)
	if err != nil {
		if errors.Is(err, agentcfg.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "agent not found")
			return
		}
		logger.L.Error("update agent config failed", "businessId", businessID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to update agent")
		return
	}
	utils.RespondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	if err := h.store.Delete(r.Context(), businessID); err != nil {
		if errors.Is(err, agentcfg.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "agent not found")
			return
		}
		logger.L.Error("delete agent config failed", "businessId", businessID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete agent")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
