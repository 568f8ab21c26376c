package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// LeaderboardHandler wires ranking endpoints.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches leaderboard routes to the router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/students", h.students)
	router.Get("/guilds", h.guilds)
}

func (h *LeaderboardHandler) students(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	ranking, err := h.service.TopStudents(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student leaderboard")
	}

	return utils.SendSuccess(c, "student leaderboard retrieved", ranking)
}

func (h *LeaderboardHandler) guilds(c *fiber.Ctx) error {
	ranking, err := h.service.GuildTotals(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch guild leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch guild leaderboard")
	}

	return utils.SendSuccess(c, "guild leaderboard retrieved", ranking)
}
