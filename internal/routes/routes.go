package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/handlers"
	"github.com/kitengela/studio/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Auth   *handlers.AuthHandler
	Files  *handlers.FileHandler
	Admin  *handlers.AdminHandler
	Backup *handlers.BackupHandler
	Health *handlers.HealthHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	verifier auth.TokenVerifier,
	authRateLimit middleware.RateLimitConfig,
) {
	router.Get("/health", h.Health.Health)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.NotFound)

	router.Route("/api", func(r chi.Router) {
		r.NotFound(handlers.NotFound)
		r.MethodNotAllowed(handlers.NotFound)

		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(authRateLimit))
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthenticated(verifier))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/auth/verify", h.Auth.Verify)
			r.Post("/files/upload", h.Files.Upload)
			r.Get("/files/list", h.Files.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/admin/users", h.Admin.ListUsers)
				r.Put("/admin/users/approve/{id}", h.Admin.ApproveUser)
				r.Delete("/admin/users/delete/{id}", h.Admin.DeleteUser)
				r.Get("/admin/files", h.Admin.ListFiles)
				r.Patch("/admin/files/approve/{id}", h.Admin.ApproveFile)
				r.Delete("/admin/files/delete/{id}", h.Admin.DeleteFile)
				r.Get("/admin/logs", h.Admin.Logs)
				r.Get("/admin/stats", h.Admin.Stats)

				r.Get("/backup/list", h.Backup.List)
				r.Post("/backup/database", h.Backup.CreateDatabase)
				r.Get("/backup/download/{name}", h.Backup.Download)
			})
		})
	})
}
