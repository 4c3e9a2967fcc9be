package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/psychai/companion/internal/handler/chat"
	"github.com/psychai/companion/internal/handler/dashboard"
	"github.com/psychai/companion/internal/handler/view"
	middlewarePkg "github.com/psychai/companion/internal/middleware"
	"github.com/psychai/companion/internal/service/companion"
	"github.com/psychai/companion/pkg/utils"
)

// NewRouter wires HTTP routes to the companion service.
func NewRouter(companionSvc *companion.Service, opts view.Options) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Create handlers
	viewHandler, err := view.New(companionSvc, opts)
	if err != nil {
		return nil, err
	}
	chatHandler := chat.New(companionSvc)
	dashboardHandler := dashboard.New(companionSvc, opts.Gate, opts.RefreshInterval)

	viewHandler.RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		// Register chat routes
		chatHandler.RegisterRoutes(api)

		// Clinician data, gated by the access key
		dashboardHandler.RegisterRoutes(api)
	})

	return r, nil
}
