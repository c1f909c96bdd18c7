package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/critterhq/critter-widget/backend/internal/handler/agents"
	chathandler "github.com/critterhq/critter-widget/backend/internal/handler/chat"
	"github.com/critterhq/critter-widget/backend/internal/handler/feedback"
	"github.com/critterhq/critter-widget/backend/internal/handler/insights"
	"github.com/critterhq/critter-widget/backend/internal/handler/widget"
	"github.com/critterhq/critter-widget/backend/internal/model/agentcfg"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
	"github.com/critterhq/critter-widget/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(store agentcfg.Store, chatSvc *chatservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Widgets embed on arbitrary customer domains.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	agentsHandler := agents.New(store)
	chatHandler := chathandler.New(chatSvc)
	feedbackHandler := feedback.New(chatSvc)
	insightsHandler := insights.New(chatSvc)
	widgetHandler := widget.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		agentsHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		feedbackHandler.RegisterRoutes(api)
		insightsHandler.RegisterRoutes(api)
		widgetHandler.RegisterRoutes(api)

		api.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Ping(r.Context()); err != nil {
				utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
					"success": false,
					"message": err.Error(),
				})
				return
			}
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": "store reachable",
			})
		})
	})

	return r
}
