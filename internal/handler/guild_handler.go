package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// GuildHandler wires guild endpoints, including the guild-wide XP penalty.
type GuildHandler struct {
	guilds  service.GuildService
	rewards service.RewardService
	logger  zerolog.Logger
}

// NewGuildHandler constructs the handler.
func NewGuildHandler(guilds service.GuildService, rewards service.RewardService, logger zerolog.Logger) *GuildHandler {
	return &GuildHandler{
		guilds:  guilds,
		rewards: rewards,
		logger:  logger.With().Str("component", "guild_handler").Logger(),
	}
}

// Register attaches guild routes to the router group. Name-addressed routes
// live under /by-name to avoid clashing with numeric ids.
func (h *GuildHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/by-name/:name", h.getByName)
	router.Post("/by-name/:name/penalty", h.penalize)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/members", h.members)
}

func (h *GuildHandler) create(c *fiber.Ctx) error {
	var payload dto.GuildCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	guild, err := h.guilds.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "guild name already in use")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create guild")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create guild")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "guild created", guild)
}

func (h *GuildHandler) list(c *fiber.Ctx) error {
	guilds, err := h.guilds.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list guilds")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list guilds")
	}

	return utils.SendSuccess(c, "guilds retrieved", guilds)
}

func (h *GuildHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	guild, err := h.guilds.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGuildNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch guild")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch guild")
	}

	return utils.SendSuccess(c, "guild retrieved", guild)
}

func (h *GuildHandler) getByName(c *fiber.Ctx) error {
	guild, err := h.guilds.GetByName(c.Context(), c.Params("name"))
	if err != nil {
		if errors.Is(err, service.ErrGuildNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch guild")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch guild")
	}

	return utils.SendSuccess(c, "guild retrieved", guild)
}

func (h *GuildHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.GuildUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	guild, err := h.guilds.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update guild")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update guild")
		}
	}

	return utils.SendSuccess(c, "guild updated", guild)
}

func (h *GuildHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.guilds.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrGuildNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete guild")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete guild")
	}

	return utils.SendSuccess(c, "guild deleted", nil)
}

func (h *GuildHandler) members(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	members, err := h.guilds.Members(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGuildNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch guild members")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch guild members")
	}

	return utils.SendSuccess(c, "guild members retrieved", members)
}

func (h *GuildHandler) penalize(c *fiber.Ctx) error {
	var payload dto.GuildPenaltyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	outcomes, err := h.rewards.PenalizeGuildXP(c.Context(), c.Params("name"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case errors.Is(err, service.ErrGuildEmpty):
			return utils.SendError(c, fiber.StatusConflict, "guild has no students")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to apply guild penalty")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply guild penalty")
		}
	}

	return utils.SendSuccess(c, "guild penalty applied", outcomes)
}
