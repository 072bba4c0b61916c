package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketing-api/internal/api/http/handlers"
	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)

	authed := cfg.AuthMiddleware.Handle

	app.Get("/profile", authed, auth.RequireAuthenticated(), cfg.Auth.Profile)

	users := app.Group("/users", authed, auth.RequireRole(domain.RoleAdmin))
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Patch("/:id/role", cfg.Users.ChangeRole)
	users.Delete("/:id", cfg.Users.Remove)

	tickets := app.Group("/tickets", authed, auth.RequireRole(domain.RoleAdmin, domain.RoleUser))
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Remove)

	// Literal segments before :id so "paginated" is not captured as an id.
	comments := app.Group("/comments", authed)
	anyRole := auth.RequireRole(domain.RoleAdmin, domain.RoleUser)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	comments.Post("/", anyRole, cfg.Comments.Create)
	comments.Get("/paginated", adminOnly, cfg.Comments.FindAllPaginated)
	comments.Get("/ticket/:ticketId/paginated", anyRole, cfg.Comments.FindByTicketPaginated)
	comments.Get("/ticket/:ticketId/user/:userId/paginated", adminOnly, cfg.Comments.FindByTicketAndUserPaginated)
	comments.Get("/ticket/:ticketId/user/:userId", adminOnly, cfg.Comments.FindByTicketAndUser)
	comments.Get("/ticket/:ticketId", anyRole, cfg.Comments.FindByTicket)
	comments.Get("/user/:userId/paginated", adminOnly, cfg.Comments.FindByUserPaginated)
	comments.Get("/user/:userId", adminOnly, cfg.Comments.FindByUser)
	comments.Get("/", adminOnly, cfg.Comments.FindAll)
	comments.Get("/:id", anyRole, cfg.Comments.Get)
	comments.Put("/:id", anyRole, cfg.Comments.Update)
	comments.Delete("/:id", anyRole, cfg.Comments.Remove)
}
