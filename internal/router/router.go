package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/config"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/handler"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/middleware"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	ExerciseHandler   *handler.ExerciseHandler
	MetricsHandler    *handler.MetricsHandler
	RankingHandler    *handler.RankingHandler
	RosterHandler     *handler.RosterHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v1/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.ExerciseHandler != nil {
		exercises := app.Group("/api/v1/exercises", jwtMiddleware)
		deps.ExerciseHandler.Register(exercises)
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	if deps.MetricsHandler != nil {
		metrics := app.Group("/api/v1/admin/metrics", jwtMiddleware, adminOnly)
		deps.MetricsHandler.Register(metrics)
	}

	if deps.RankingHandler != nil {
		rankings := app.Group("/api/v1/rankings", jwtMiddleware)
		deps.RankingHandler.Register(rankings)
	}

	if deps.RosterHandler != nil {
		roster := app.Group("/api/v1/admin/roster", jwtMiddleware, adminOnly)
		deps.RosterHandler.Register(roster)

		seed := app.Group("/api/v1/roster")
		deps.RosterHandler.RegisterSeed(seed)
	}
}
