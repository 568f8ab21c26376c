package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/willow-go-api/internal/config"
	"github.com/noah-isme/willow-go-api/internal/handler"
	"github.com/noah-isme/willow-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler     *handler.StudentHandler
	ClassHandler       *handler.ClassHandler
	GuildHandler       *handler.GuildHandler
	QuestHandler       *handler.QuestHandler
	EnrollmentHandler  *handler.EnrollmentHandler
	LeaderboardHandler *handler.LeaderboardHandler
	SeedHandler        *handler.SeedHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students"))
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(api.Group("/classes"))
	}
	if deps.GuildHandler != nil {
		deps.GuildHandler.Register(api.Group("/guilds"))
	}
	if deps.QuestHandler != nil {
		deps.QuestHandler.Register(api.Group("/quests"))
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(api.Group("/enrollments"))
	}
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(api.Group("/leaderboard"))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
