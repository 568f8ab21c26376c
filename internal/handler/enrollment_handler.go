package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// EnrollmentHandler wires enrollment endpoints, including completion and the
// guild/class bulk operations.
type EnrollmentHandler struct {
	enrollments service.EnrollmentService
	rewards     service.RewardService
	logger      zerolog.Logger
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(enrollments service.EnrollmentService, rewards service.RewardService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		rewards:     rewards,
		logger:      logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches enrollment routes to the router group.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Post("/bulk-enroll", h.bulkEnroll)
	router.Post("/bulk-complete", h.bulkComplete)
	router.Get("/:id", h.get)
	router.Post("/:id/complete", h.complete)
}

func (h *EnrollmentHandler) create(c *fiber.Ctx) error {
	var payload dto.EnrollmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	enrollment, err := h.enrollments.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrQuestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create enrollment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create enrollment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrollment created", enrollment)
}

// list filters by quest_id. Per-student listings live under the student
// resource.
func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	questID, err := parseQueryInt(c, "quest_id")
	if err != nil || questID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "quest_id query is required")
	}

	enrollments, err := h.enrollments.ListByQuestID(c.Context(), uint(questID))
	if err != nil {
		if errors.Is(err, service.ErrQuestNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list enrollments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list enrollments")
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	enrollment, err := h.enrollments.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch enrollment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch enrollment")
	}

	return utils.SendSuccess(c, "enrollment retrieved", enrollment)
}

func (h *EnrollmentHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.EnrollmentCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	enrollment, err := h.rewards.CompleteEnrollment(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		case errors.Is(err, service.ErrEnrollmentClosed):
			return utils.SendError(c, fiber.StatusConflict, "enrollment already completed or failed")
		case errors.Is(err, service.ErrQuestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to complete enrollment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to complete enrollment")
		}
	}

	return utils.SendSuccess(c, "enrollment completed", enrollment)
}

func (h *EnrollmentHandler) bulkEnroll(c *fiber.Ctx) error {
	var payload dto.BulkEnrollRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.rewards.BulkEnroll(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quest not found")
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case errors.Is(err, service.ErrBulkTargetMissing):
			return utils.SendError(c, fiber.StatusBadRequest, "either guild name or class id must be provided")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to bulk enroll")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to bulk enroll")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "bulk enrollment completed", result)
}

func (h *EnrollmentHandler) bulkComplete(c *fiber.Ctx) error {
	var payload dto.BulkCompleteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.rewards.BulkComplete(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to bulk complete")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to bulk complete")
		}
	}

	return utils.SendSuccess(c, "bulk completion finished", result)
}
