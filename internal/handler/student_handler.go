package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/service"
	"github.com/noah-isme/willow-go-api/internal/utils"
)

// StudentHandler wires student endpoints, including the per-student reward
// operations and ledger reads.
type StudentHandler struct {
	students    service.StudentService
	rewards     service.RewardService
	history     service.HistoryService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(
	students service.StudentService,
	rewards service.RewardService,
	history service.HistoryService,
	enrollments service.EnrollmentService,
	logger zerolog.Logger,
) *StudentHandler {
	return &StudentHandler{
		students:    students,
		rewards:     rewards,
		history:     history,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/search", h.search)
	router.Get("/history/search", h.searchHistory)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/history", h.listHistory)
	router.Get("/:id/enrollments", h.listEnrollments)
	router.Post("/:id/xp/grant", h.grantXP)
	router.Post("/:id/xp/penalty", h.penalizeXP)
	router.Post("/:id/badges", h.awardBadge)
	router.Post("/:id/academic-points", h.addAcademicPoints)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.students.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.students.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) search(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "name query is required")
	}

	students, err := h.students.SearchByName(c.Context(), name)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to search students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.students.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.students.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrGuildNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guild not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update student")
		}
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.students.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", nil)
}

func (h *StudentHandler) listHistory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	entries, err := h.history.ListByStudentID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch history")
	}

	return utils.SendSuccess(c, "history retrieved", entries)
}

func (h *StudentHandler) searchHistory(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "name query is required")
	}

	entries, err := h.history.ListByStudentName(c.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch history")
	}

	return utils.SendSuccess(c, "history retrieved", entries)
}

func (h *StudentHandler) listEnrollments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	enrollments, err := h.enrollments.ListByStudentID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch enrollments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch enrollments")
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *StudentHandler) grantXP(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.XPGrantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.rewards.GrantXP(c.Context(), id, payload)
	if err != nil {
		return h.rewardError(c, err, "failed to grant xp")
	}

	return utils.SendSuccess(c, "xp granted", student)
}

func (h *StudentHandler) penalizeXP(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.XPPenaltyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.rewards.PenalizeXP(c.Context(), id, payload)
	if err != nil {
		return h.rewardError(c, err, "failed to apply xp penalty")
	}

	return utils.SendSuccess(c, "xp penalty applied", student)
}

func (h *StudentHandler) awardBadge(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.BadgeAwardRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.rewards.AwardBadge(c.Context(), id, payload)
	if err != nil {
		return h.rewardError(c, err, "failed to award badge")
	}

	return utils.SendSuccess(c, "badge awarded", student)
}

func (h *StudentHandler) addAcademicPoints(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AcademicPointsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.rewards.AddQuestAcademicPoints(c.Context(), id, payload)
	if err != nil {
		return h.rewardError(c, err, "failed to add academic points")
	}

	return utils.SendSuccess(c, "academic points added", student)
}

func (h *StudentHandler) rewardError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrQuestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quest not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
