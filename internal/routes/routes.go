package routes

import (
	"github.com/flightdeck/gateway-api/internal/clients"
	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/metrics"
	"github.com/flightdeck/gateway-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, mw *middleware.Manager) {
	// Bearer tokens come from the caller's session record; the session
	// middleware puts the store on the request context.
	tokenSource := middleware.ContextTokenSource()

	flightClient := clients.NewFlightClient(&cfg.Backend, logger, tokenSource)
	bookingClient := clients.NewBookingClient(&cfg.Backend, logger, tokenSource)

	authHandler := NewAuthHandler(mw.Auth, logger)
	flightHandler := NewFlightHandler(flightClient, logger)
	bookingHandler := NewBookingHandler(bookingClient, logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(mw))

	// Metrics endpoint (no auth required)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())

	// API routes: every request gets its session context resolved first.
	api := app.Group("/api")
	api.Use(metrics.HTTPMetricsMiddleware())
	api.Use(mw.SessionContext())

	// Auth routes (public endpoints)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/change-password", authHandler.ChangePassword)
	authRoutes.Get("/password-expiry-status", authHandler.PasswordExpiryStatus)
	authRoutes.Get("/me", mw.RequireAuth(), authHandler.Me)

	// Flight routes: search needs a session, inventory management needs admin.
	flightRoutes := api.Group("/flights")
	flightRoutes.Post("/search", mw.RequireAuth(), flightHandler.Search)
	flightRoutes.Get("/inventory", mw.RequireAdmin(), flightHandler.Inventory)
	flightRoutes.Post("/add", mw.RequireAdmin(), flightHandler.Add)
	flightRoutes.Get("/inventory/:id", mw.RequireAuth(), flightHandler.GetByID)

	// Booking routes (require authentication)
	bookingRoutes := api.Group("/bookings", mw.RequireAuth())
	bookingRoutes.Post("/book", bookingHandler.Book)
	bookingRoutes.Get("/history/:email", bookingHandler.History)
	bookingRoutes.Delete("/cancel/:pnr", bookingHandler.Cancel)

	// 404 handler
	app.Use(notFoundHandler)
}

// healthCheck returns the health status of the service
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// readinessCheck verifies the session storage backend is reachable
func readinessCheck(mw *middleware.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := mw.Ready(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"reason": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "NOT_FOUND",
			"message": "Route not found",
		},
	})
}
