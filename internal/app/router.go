package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rgstore/rgstore-pos/internal/auth"
	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/ledger"
	"github.com/rgstore/rgstore-pos/internal/reports"
	"github.com/rgstore/rgstore-pos/internal/sales"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthService    *auth.Service
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	LedgerHandler  *ledger.Handler
	SalesHandler   *sales.Handler
	ReportsHandler *reports.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthService.RequireAuth)

			r.Route("/products", func(r chi.Router) {
				params.CatalogHandler.MountRoutes(r)
				params.LedgerHandler.MountRoutes(r)
			})
			r.Route("/sales", params.SalesHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		})
	})

	return r
}
