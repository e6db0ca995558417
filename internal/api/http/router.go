package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nowest-interior/admin-auth/internal/api/http/handlers"
	"github.com/nowest-interior/admin-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	adminGroup := app.Group("/api/admin")
	adminGroup.Post("/login", cfg.Auth.Login)
	adminGroup.Post("/logout", cfg.Auth.Logout)
	adminGroup.Post("/password-reset/request", cfg.Auth.RequestPasswordReset)
	adminGroup.Post("/password-reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := adminGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)
	protected.Get("/admins", cfg.Auth.ListAdmins)
	protected.Post("/create-admin", cfg.Auth.CreateAdmin)
}
