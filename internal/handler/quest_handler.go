package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// QuestHandler wires quest catalog endpoints. Quests are addressed by code.
type QuestHandler struct {
	service service.QuestService
	logger  zerolog.Logger
}

// NewQuestHandler constructs the handler.
func NewQuestHandler(service service.QuestService, logger zerolog.Logger) *QuestHandler {
	return &QuestHandler{
		service: service,
		logger:  logger.With().Str("component", "quest_handler").Logger(),
	}
}

// Register attaches quest routes to the router group.
func (h *QuestHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:code", h.get)
	router.Patch("/:code", h.update)
}

func (h *QuestHandler) create(c *fiber.Ctx) error {
	var payload dto.QuestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quest, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestCodeTaken):
			return utils.SendError(c, fiber.StatusConflict, "quest code already in use")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create quest")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create quest")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quest created", quest)
}

func (h *QuestHandler) list(c *fiber.Ctx) error {
	quests, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list quests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list quests")
	}

	return utils.SendSuccess(c, "quests retrieved", quests)
}

func (h *QuestHandler) get(c *fiber.Ctx) error {
	quest, err := h.service.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, service.ErrQuestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch quest")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch quest")
	}

	return utils.SendSuccess(c, "quest retrieved", quest)
}

func (h *QuestHandler) update(c *fiber.Ctx) error {
	var payload dto.QuestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quest, err := h.service.UpdateByCode(c.Context(), c.Params("code"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update quest")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update quest")
		}
	}

	return utils.SendSuccess(c, "quest updated", quest)
}
