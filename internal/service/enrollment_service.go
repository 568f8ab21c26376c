package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

var (
	// ErrEnrollmentNotFound indicates the requested enrollment does not exist.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// EnrollmentService manages quest enrollments. Completion belongs to the
// reward engine, since it changes student state.
type EnrollmentService interface {
	Create(ctx context.Context, req dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.EnrollmentResponse, error)
	ListByStudentID(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	ListByQuestID(ctx context.Context, questID uint) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	students    repository.StudentRepository
	quests      repository.QuestRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewEnrollmentService constructs an enrollment service.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	students repository.StudentRepository,
	quests repository.QuestRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		students:    students,
		quests:      quests,
		validator:   validate,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// Create enrolls the student in the quest. Repeat enrollments are allowed;
// each attempt gets its own record.
func (s *enrollmentService) Create(ctx context.Context, req dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrStudentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}
	if _, err := s.quests.GetByID(ctx, req.QuestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrQuestNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		StudentID: req.StudentID,
		QuestID:   req.QuestID,
		Status:    models.EnrollmentStatusStarted,
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("enrollment_id", enrollment.ID).Uint("student_id", req.StudentID).Uint("quest_id", req.QuestID).Msg("enrollment created")
	return s.GetByID(ctx, enrollment.ID)
}

func (s *enrollmentService) GetByID(ctx context.Context, id uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListByStudentID(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	enrollments, err := s.enrollments.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListByQuestID(ctx context.Context, questID uint) ([]dto.EnrollmentResponse, error) {
	if _, err := s.quests.GetByID(ctx, questID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, err
	}

	enrollments, err := s.enrollments.ListByQuestID(ctx, questID)
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}
