package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/pvasilakos/Portfolio-Tracker-Backend/internal/api/middleware"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/config"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/view"
)

// NewRouter creates and configures the HTTP router
func NewRouter(views map[model.AssetType]*view.PortfolioView, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	categories := make([]string, 0, len(views))
	for assetType := range views {
		categories = append(categories, string(assetType))
	}
	sort.Strings(categories)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(categories)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/views/{category}", func(r chi.Router) {
			viewHandler := handlers.NewViewHandler(views)
			r.Get("/holdings", viewHandler.Holdings)
			r.Get("/percentages", viewHandler.Percentages)
			r.Get("/overview", viewHandler.Overview)
			r.Get("/realized-gains", viewHandler.RealizedGains)
			r.Post("/refresh", viewHandler.Refresh)
		})
	})

	return r
}
