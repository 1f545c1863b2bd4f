package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/evaluation-criteria/internal/auth"
	"github.com/frahmantamala/evaluation-criteria/internal/category"
	"github.com/frahmantamala/evaluation-criteria/internal/criteria"
	"github.com/frahmantamala/evaluation-criteria/internal/transport/middleware"
	"github.com/frahmantamala/evaluation-criteria/internal/transport/swagger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

type Handlers struct {
	Auth     *auth.Handler
	RBAC     *auth.RBACAuthorization
	Category *category.Handler
	Criteria *criteria.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. openapiSpec is served for the
// swagger UI; validator may be nil to skip request validation.
func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, handlers Handlers, openapiSpec []byte, validator func(http.Handler) http.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(swagger.SpecPath, swagger.SpecHandler(openapiSpec))
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if validator != nil {
			r.Use(validator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public read-only category routes
		r.Get("/categories", handlers.Category.GetCategories)
		r.Get("/categories/summary", handlers.Category.GetWeightSummary)

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Get("/me", handlers.Auth.Me)

			// Inactive categories are hidden from non-admins by the service
			pr.Get("/categories/{id}", handlers.Category.GetCategory)
			pr.Get("/categories/{id}/criteria", handlers.Criteria.ListCriteria)

			pr.Group(func(ar chi.Router) {
				ar.Use(handlers.RBAC.RequireAdmin())

				ar.Get("/admin/categories", handlers.Category.GetAllCategories)

				ar.Post("/categories", handlers.Category.CreateCategory)
				ar.Patch("/categories/{id}", handlers.Category.UpdateCategory)
				ar.Delete("/categories/{id}", handlers.Category.DeleteCategory)
				ar.Post("/categories/weights/validate", handlers.Category.ValidateWeights)
				ar.Put("/categories/weights", handlers.Category.RebalanceWeights)
				ar.Post("/categories/{id}/deactivate", handlers.Category.DeactivateCategory)
				ar.Post("/categories/{id}/cascade-deactivate", handlers.Category.CascadeDeactivate)
				ar.Post("/categories/{id}/reactivate", handlers.Category.ReactivateCategory)

				ar.Post("/categories/{id}/criteria", handlers.Criteria.CreateCriteria)
				ar.Patch("/criteria/{id}", handlers.Criteria.UpdateCriteria)
				ar.Post("/criteria/{id}/deactivate", handlers.Criteria.DeactivateCriteria)
				ar.Post("/criteria/{id}/activate", handlers.Criteria.ActivateCriteria)
			})
		})
	})
}
