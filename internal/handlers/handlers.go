package handlers

import (
	"ChocoWrappers/internal/config"
	"ChocoWrappers/internal/middleware"
	"ChocoWrappers/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	catalog *service.CatalogService,
	admins *service.AdminService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	wrapperHandler := NewWrapperHandler(catalog, logger, config)
	authHandler := NewAuthHandler(admins, logger, config)
	diagnosticHandler := NewDiagnosticHandler(catalog, logger, config)

	r.Route("/api", func(r chi.Router) {
		// Catalog routes
		r.Get("/wrappers", wrapperHandler.List)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(config.RequireAdmin))
			r.Post("/wrappers", wrapperHandler.Create)
			r.Put("/wrappers", wrapperHandler.Update)
			r.Delete("/wrappers", wrapperHandler.Delete)
		})
		r.Post("/like", wrapperHandler.Like)
		r.Get("/next-model", wrapperHandler.NextModel)

		// Admin routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/diagnostic", diagnosticHandler.Diagnostic)
	})

	return &Handler{Router: r}
}
