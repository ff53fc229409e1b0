package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gameskins-co/intake/internal/catalog"
	"github.com/gameskins-co/intake/internal/http/handlers"
	httpmiddleware "github.com/gameskins-co/intake/internal/http/middleware"
	"github.com/gameskins-co/intake/internal/intake"
	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	HomeHandler    *handlers.HomeHandler
	CatalogHandler *catalog.Handler
	IntakeHandler  *intake.Handler
	LeadsHandler   *leads.Handler
	MetricsHandler http.Handler

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public storefront endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.HomeHandler != nil {
			public.Get("/", cfg.HomeHandler.Home)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/api/gallery/{console}", cfg.CatalogHandler.ListGallery)
			public.Get("/api/combos", cfg.CatalogHandler.ListCombos)
		}
		if cfg.IntakeHandler != nil {
			public.Post("/submit", cfg.IntakeHandler.Submit)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Lead review endpoints, behind the admin token
	if cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
