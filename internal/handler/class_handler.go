package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// ClassHandler wires class endpoints.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class routes to the router group.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/history", h.listHistory)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "class name already in use")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	classes, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	class, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch class")
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ClassUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update class")
		}
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *ClassHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete class")
	}

	return utils.SendSuccess(c, "class deleted", nil)
}

func (h *ClassHandler) listHistory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	entries, err := h.service.History(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch class history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch class history")
	}

	return utils.SendSuccess(c, "class history retrieved", entries)
}
