package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/document-tracking/internal/api/http/handlers"
	"github.com/spec-kit/document-tracking/internal/auth"
	"github.com/spec-kit/document-tracking/internal/domain"
)

// Viewers may read but never change documents.
var writerRoles = []domain.UserRole{domain.RoleAdministrator, domain.RoleOperator}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Documents      *handlers.DocumentsHandler
	Organization   *handlers.OrganizationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/users", auth.RequireAdmin(), cfg.Auth.CreateUser)

	docs := protected.Group("/documents")
	docs.Post("/", auth.RequireRole(writerRoles...), cfg.Documents.CreateDocument)
	docs.Get("/", cfg.Documents.ListDocuments)
	docs.Get("/near-deadline", cfg.Documents.NearDeadline)
	docs.Get("/:id", cfg.Documents.GetDocument)
	docs.Get("/:id/history", cfg.Documents.History)
	docs.Get("/:id/permissions", cfg.Documents.Permissions)
	docs.Post("/:id/move", auth.RequireRole(writerRoles...), cfg.Documents.Move)
	docs.Post("/:id/assign", auth.RequireRole(writerRoles...), cfg.Documents.Assign)
	docs.Patch("/:id/status", auth.RequireRole(writerRoles...), cfg.Documents.UpdateStatus)
	docs.Delete("/:id", cfg.Documents.Delete)

	protected.Get("/areas", cfg.Organization.ListAreas)
	protected.Post("/areas", auth.RequireAdmin(), cfg.Organization.CreateArea)
	protected.Patch("/areas/:id", auth.RequireAdmin(), cfg.Organization.UpdateArea)
	protected.Get("/employees", cfg.Organization.ListEmployees)
	protected.Post("/employees", auth.RequireAdmin(), cfg.Organization.CreateEmployee)
	protected.Patch("/employees/:id", auth.RequireAdmin(), cfg.Organization.UpdateEmployee)
}
