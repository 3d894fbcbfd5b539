package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/revisetax/docs-gateway/app"
	"github.com/revisetax/docs-gateway/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-Token"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.AdminService, deps.AuditService, deps.Logger)
	filesHandler := handlers.NewFilesHandler(deps.FileService, deps.AuditService, deps.Logger)
	auditHandler := handlers.NewAuditHandler(deps.AdminService, deps.AuditService, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Session endpoints. These live under the auth-only prefix but bypass the
	// gate: callback and logout must work regardless of admission state.
	r.Get("/auth/callback", deps.AuthHandler().HandleCallback)
	r.Get("/auth/logout", deps.AuthHandler().HandleLogout)

	// Gated browser areas. The gate resolves the identity, applies the route
	// admission policy, and audits every decision.
	gate := deps.RouteGate.Admit
	r.With(gate).Handle("/auth/*", handlers.PageHandler("auth"))
	r.With(gate).Handle("/dashboard", handlers.PageHandler("dashboard"))
	r.With(gate).Handle("/dashboard/*", handlers.PageHandler("dashboard"))
	r.With(gate).Handle("/admin", handlers.PageHandler("admin"))
	r.With(gate).Handle("/admin/*", handlers.PageHandler("admin"))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireIdentity)

			r.Get("/me", handlers.CurrentIdentityHandler())

			r.Route("/admin", func(r chi.Router) {
				r.Post("/login", adminHandler.HandleLogin)
				r.Get("/me", adminHandler.HandleCurrent)

				r.Route("/audit", func(r chi.Router) {
					r.Get("/", auditHandler.HandleList)
					r.Get("/{requestID}", auditHandler.HandleTrace)
				})
			})

			r.Route("/files", func(r chi.Router) {
				r.Get("/{id}/url", filesHandler.HandleGrantURL)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
