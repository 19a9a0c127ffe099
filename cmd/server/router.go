package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskboard/internal/api"
	apimiddleware "github.com/phrazzld/taskboard/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordHasher,
		app.eventEmitter,
		app.logger,
	)
	taskHandler := api.NewTaskHandler(
		app.taskStore,
		app.userStore,
		app.generator,
		app.fallback,
		app.eventEmitter,
		app.logger,
	)
	apiKeyHandler := api.NewAPIKeyHandler(app.apiKeyStore, app.logger)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService, app.apiKeyStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)

			// Task endpoints
			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/suggestions", taskHandler.Suggest)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			// API key endpoints
			r.Get("/keys", apiKeyHandler.List)
			r.Post("/keys", apiKeyHandler.Create)
			r.Patch("/keys/{id}/revoke", apiKeyHandler.Revoke)
			r.Delete("/keys/{id}", apiKeyHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
